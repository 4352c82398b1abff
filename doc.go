/*
Package qtree is an interactive question tree engine for CLIs, editor
extensions and automation hosts.

A question tree is a tree of questions and groups. Each node may carry a
condition on its parent's answer; the engine walks the tree depth-first,
skips inactive subtrees, asks every active question through a host-supplied
Asker, validates the answer and re-prompts until it passes or the user
cancels. The result is a flat map from question name to answer.

# Concept

The engine owns traversal, conditions, option and default resolution and
validation. The host owns IO (the Asker) and side-effects (remote functions,
file system checks, named validators). This Hexagonal Architecture allows
qtree to be embedded in any interface: a terminal, an HTTP service or an
MCP tool.

# Key Features

  - Conditional subtrees: a child is visited only when its condition on
    "$parent" (or "$parent.prop") passes.
  - Rich validation: equals, enums, numeric bounds, string and list rules,
    file existence, remote and local validator functions.
  - Dynamic options and defaults from remote functions that see the
    answers collected so far.
  - Strict Contracts: trees are checked before the first prompt.

# Usage

Build a tree with the dsl package (or load one from YAML/JSON) and run it:

	package main

	import (
		"context"
		"fmt"
		"log"
		"os"

		"github.com/aretw0/qtree"
		"github.com/aretw0/qtree/pkg/dsl"
		"github.com/aretw0/qtree/pkg/runner"
	)

	func main() {
		tree := dsl.Group("setup").Children(
			dsl.SingleSelect("env").Title("Environment").Options("dev", "prod"),
			dsl.Text("url").When("$parent", dsl.Equals("prod")),
		).MustBuild()

		eng := qtree.New(runner.NewTextAsker(os.Stdin, os.Stdout))
		res, err := eng.Run(context.Background(), tree, nil)
		if err != nil {
			log.Fatal(err)
		}
		if res.Cancelled() {
			return
		}
		fmt.Println(res.Answers)
	}
*/
package qtree
