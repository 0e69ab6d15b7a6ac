package layout

import (
	"fmt"

	"github.com/gruntwork-io/fpack/internal/errors"
)

// Validate checks the feature-pack is self consistent: default packages exist, local package
// dependencies exist and every origin names a declared feature-pack dependency. All problems found
// are returned together.
func (layout *Layout) Validate() error {
	var errs *errors.MultiError

	problem := func(format string, args ...any) {
		errs = errs.Append(ValidationError{Gav: layout.Gav(), Problem: fmt.Sprintf(format, args...)})
	}

	checkOrigin := func(origin, owner string) {
		if origin != "" && layout.Spec.Dependency(origin) == nil {
			problem("%s references undeclared feature-pack dependency %s", owner, origin)
		}
	}

	for _, name := range layout.Spec.DefaultPackages {
		if !layout.HasPackage(name) {
			problem("default package %s is missing", name)
		}
	}

	pkgNames, err := layout.PackageNames()
	if err != nil {
		return err
	}

	for _, name := range pkgNames {
		pkgSpec, err := layout.PackageSpec(name)
		if err != nil {
			errs = errs.Append(err)
			continue
		}

		for _, dep := range pkgSpec.LocalDeps {
			if !dep.Optional && !layout.HasPackage(dep.Name) {
				problem("package %s depends on missing package %s", name, dep.Name)
			}
		}

		for _, external := range pkgSpec.ExternalDeps {
			checkOrigin(external.Origin, "package "+name)
		}

		if _, err := NewFileFilter(pkgSpec.Filters); err != nil {
			problem("package %s: %v", name, err)
		}
	}

	specNames, err := layout.FeatureSpecNames()
	if err != nil {
		return err
	}

	for _, name := range specNames {
		featureSpec, err := layout.FeatureSpec(name)
		if err != nil {
			errs = errs.Append(err)
			continue
		}

		for _, ref := range featureSpec.Refs {
			checkOrigin(ref.Origin, "feature spec "+name)

			if ref.Origin == "" && !layout.HasFeatureSpec(ref.Feature) {
				problem("feature spec %s references missing feature spec %s", name, ref.Feature)
			}
		}

		for _, dep := range featureSpec.PackageDeps {
			checkOrigin(dep.Origin, "feature spec "+name)

			if dep.Origin == "" && !dep.Optional && !layout.HasPackage(dep.Name) {
				problem("feature spec %s depends on missing package %s", name, dep.Name)
			}
		}
	}

	groupNames, err := layout.FeatureGroupNames()
	if err != nil {
		return err
	}

	for _, name := range groupNames {
		if _, err := layout.FeatureGroup(name); err != nil {
			errs = errs.Append(err)
		}
	}

	return errs.ErrorOrNil()
}
