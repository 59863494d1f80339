/*
Package burgo is a bottom-up rewrite system (BURS) tree-parser generator.

Given a set of tree-grammar productions annotated with costs and semantic
actions, burgo constructs a finite-state transition automaton that labels
each node of an input tree with a state number, and a reducer that, given a
desired goal nonterminal, walks the labeled tree and invokes the
productions' semantic callbacks in the correct order to rewrite the tree to
that goal at minimum cost. Package structure is as follows:

■ burs: Package burs implements the state-construction algorithm, the
representer-state projection and the two-pass label/reduce automaton. This
is the hard part, and the only part burgo specifies in detail.

■ burs/grammar: Package grammar implements a small textual front end for
describing productions and closures, compiling them into a burs.ProductionTable.

■ env: Package env implements the variable environment a grammar's
semantic actions close over, passed to Reducer.Reduce as the visitor
argument.

■ cmd/burgsh: An interactive shell for loading a grammar, generating its
tables and experimenting with label/reduce on sample trees.

The base package contains data types which are used throughout all the
other packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package burgo
