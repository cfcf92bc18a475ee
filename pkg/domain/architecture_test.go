package domain

import (
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestDomainPackageStaysPure ensures the domain model never reaches back into
// the internal packages that build on it.
func TestDomainPackageStaysPure(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports}
	pkgs, err := packages.Load(cfg, "archgraph/pkg/domain")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	for _, pkg := range pkgs {
		for importPath := range pkg.Imports {
			if strings.HasPrefix(importPath, "archgraph/internal/") {
				t.Errorf("domain imports internal package %s", importPath)
			}
		}
	}
}
