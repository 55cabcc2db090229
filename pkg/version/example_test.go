package version_test

import (
	"fmt"

	"github.com/astral-sh/ruff-action/pkg/version"
)

func ExampleMaxSatisfying() {
	tags := []string{"0.5.1", "0.5.0", "v0.4.10", "v0.4.9"}

	m := version.MaxSatisfying(tags, ">=0.4.0,<0.5.0")
	fmt.Println(m.Tag, m.Stage)

	m = version.MaxSatisfying([]string{"0.5.1", "0.5.0", "0.4.10"}, "~=0.5.0")
	fmt.Println(m.Tag, m.Stage)
	// Output:
	// v0.4.10 semver
	// 0.5.1 pep440
}

func ExampleIsExplicit() {
	fmt.Println(version.IsExplicit("0.5.0"))
	fmt.Println(version.IsExplicit("v0.4.10"))
	fmt.Println(version.IsExplicit(">=0.5"))
	// Output:
	// true
	// true
	// false
}
