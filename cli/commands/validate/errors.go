package validate

import "fmt"

type InvalidFeaturePackError struct {
	Path     string
	Problems int
}

func (err InvalidFeaturePackError) Error() string {
	return fmt.Sprintf("feature-pack %s has %d problem(s)", err.Path, err.Problems)
}
