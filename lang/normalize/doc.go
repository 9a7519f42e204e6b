// Package normalize converts author-facing script text into the canonical
// form parsed by package lang.
//
// Canonical text is prose interleaved with bracketed tags. Authors may
// instead write a line-oriented grammar:
//
//	*intro                 ; [label intro]
//	@ann Good morning.     ; [speaker ann]Good morning.[br]
//	#math.add 1 2          ; [math.add 1 2]
//	!ann! wave slow        ; [ann.wave target=ann slow]
//	Total: [%= 2 * 3 %]    ; Total: [print [math.calc "2 * 3"]][br]
//	----                   ; [pb]
//
// Each construct is handled by a [Designator]. Designators run by
// [Position], so content captured by a tag rule is never seen by a head or
// tail rule. A literal "[[" prints one open bracket.
package normalize
