/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically constructing question trees.

It allows developers to define trees with a type-safe, fluent builder instead of
YAML or JSON files. Children are attached bottom-up when Build is called, so
every structural rule (non-empty groups, unique names along a path) is checked
exactly as it would be for a compiled file.

Example usage:

	package main

	import (
		"github.com/aretw0/qtree/pkg/domain"
		"github.com/aretw0/qtree/pkg/dsl"
	)

	func main() {
		tree, err := dsl.Group("setup").Children(
			dsl.SingleSelect("env").Title("Environment").Options("dev", "prod"),
			dsl.Text("url").
				When("$parent", dsl.Equals("prod")).
				Validate(&domain.StringValidation{Pattern: "^https://"}),
		).Build()
		if err != nil {
			panic(err)
		}
		_ = tree
	}
*/
package dsl
