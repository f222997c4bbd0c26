/*
Package cfgearley is a general context-free-grammar parsing toolbox.

It accepts arbitrary grammars — ambiguous, left- or right-recursive, with
nullable nonterminals — and produces a deterministic abstract syntax tree for
a given input. Package structure:

■ symbol: the Symbol abstraction (terminal vs. nonterminal) the rest of the
toolbox is polymorphic over.

■ cfg: grammar construction — rules indexed by nonterminal, with precomputed
nullability.

■ setops: generic sorted-set maintenance used by the recognizer's per-position
fixed point.

■ chart: the completions store (a position-indexed map from nonterminal to
waiting states), including right-recursion bypass records.

■ earley: the Earley-style recognizer, building a chart and a completion
trace from a grammar and an input.

■ ast: the extractor, walking a completion trace backwards to reconstruct a
single disambiguated AST.

■ scanner: optional tokenizing front-ends producing the terminal slices the
recognizer consumes.

This module's core (cfg, setops, chart, earley, ast) has no dependency on how
terminals are encoded; byte-oriented parsing is simply the common
instantiation, provided by the scanner package.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package cfgearley
