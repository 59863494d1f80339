/*
Package burs implements the core of a bottom-up rewrite system (BURS)
tree-parser generator: state construction, closure, representer-state
projection and the two-pass label/reduce reducer.

Clients build a ProductionTable by registering pattern matchers and
closures, call GenerateStates once, and then use a Reducer to label input
trees and reduce them to a goal nonterminal.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package burs
