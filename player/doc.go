// Package player plays parsed scenarios against a [lang.Runtime].
//
// A [Player] keeps a stack of scenarios. Macros expanded while a unit runs
// are pushed on top and play before the rest of the scenario that invoked
// them. Script text controls playback through the story package installed
// by [Player.Install].
package player
