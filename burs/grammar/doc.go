/*
Package grammar is a small textual front end for burs.ProductionTable: a
DSL for writing pattern matchers and closures without having to call
AddPatternMatch/AddClosure/AddVarArgsPatternMatch from Go source.

Grammar text looks like this:

	pattern Reg <- CONST() : 1
	pattern Reg <- PLUS(Reg, Reg) : 1
	closure Addr <- Reg : 0
	pattern List <- LIST(Item...) : 2

Each line declares either a pattern (target <- nodeType(childTypes…) :
cost, with a trailing "..." on the last child type marking it variadic)
or a closure (target <- source : cost). Comments start with "#" and run
to end of line.

Build translates a parsed Grammar into calls against a
*burs.ProductionTable; callbacks are not expressible in the textual form
and must be attached separately by callers that need them (see
BuildWithCallbacks).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package grammar
