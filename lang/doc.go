// Package lang implements the rosetto scripting language: a small Lisp-like
// language whose programs are prose interleaved with bracketed action tags.
//
// # Canonical Text
//
// The parser reads canonical text, where every construct that is not
// literal prose is wrapped in a tag:
//
//	Hello, [label start]World![br]
//	[speaker alice]How are you, @name?[br]
//	[set mood (happy tired)][print [first $mood]][pb]
//
// Author-facing grammars are rewritten to canonical text by the
// [github.com/ardnew/rosetto/lang/normalize] package.
//
// # Elements
//
// Tag arguments are space-separated elements:
//
//	"quoted text"    String
//	[name args]      nested Call, evaluated before the outer call
//	(a b key=c)      List, with optional keyword entries
//	@name            local variable, same as [getlocal name]
//	$name            global variable, same as [getglobal name]
//	42, 1.5          Int, Double
//	true, false      Bool
//	null             Null
//	key=value        keyword argument
//
// # Evaluation
//
// A [Runtime] owns the namespace [Registry] and the global [Scope]. A
// [Call] is resolved by name on every evaluation: first in the scope
// chain, then in the active namespace, then in the root namespace.
//
//   - A [*Function] has its arguments bound to its parameters in a new
//     child scope, then its native callback or body runs.
//   - A [*Script] (macro) is parsed, its placeholders (%name,
//     %name|default and *) are expanded with the caller's arguments, and
//     the resulting scenario is handed to the [Player]. The call itself
//     yields [Void].
//   - A name that resolves to nothing is logged and yields [Void].
//
// # Namespaces
//
// Namespaces form a flat registry keyed by dotted path. Native functions
// are registered as a [FunctionPackage], imported into a namespace named
// after the package and sealed against redefinition:
//
//	rt := lang.New(lang.WithPackages(math.Package()))
//	rt.Evaluate(ctx, lang.NewCall("math.add", lang.Int(1), lang.Int(2)), nil)
package lang
