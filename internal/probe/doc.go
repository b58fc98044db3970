// Package probe reads probe documents: TOML or YAML files that declare a
// small type environment (classes, structs, enums, unions, variables) and
// a list of operator cases written in a compact expression syntax.
//
// A case expression is scanned and parsed into an untyped tree, then
// lowered bottom-up through sema: every operator node goes through
// Checker.Binary or Checker.Unary, so a probe exercises the resolver the
// same way a compiler front end would.
package probe
