package player

import (
	"context"

	"github.com/ardnew/rosetto/lang"
)

// PackageName is the namespace of the functions returned by [Player.Package].
const PackageName = "story"

// Package returns functions that control playback from script text:
//
//	[story.jump label]  continue at label
//	[story.call label]  play the section at label, then continue here
//	[story.wait]        pause until Run is called again
//	[story.end]         stop playback
func (p *Player) Package() *lang.FunctionPackage {
	return lang.NewPackage(PackageName,
		lang.NativeVoid("jump", "label", func(ctx context.Context, f *lang.Frame) (lang.Value, error) {
			return lang.Void, p.Jump(ctx, f.Arg("label").String())
		}),
		lang.NativeVoid("call", "label", func(ctx context.Context, f *lang.Frame) (lang.Value, error) {
			return lang.Void, p.Call(ctx, f.Arg("label").String(), lang.NewScope(f.Caller))
		}),
		lang.NativeVoid("wait", "", func(context.Context, *lang.Frame) (lang.Value, error) {
			p.waiting = true

			return lang.Void, nil
		}),
		lang.NativeVoid("end", "", func(ctx context.Context, _ *lang.Frame) (lang.Value, error) {
			p.Stop(ctx)

			return lang.Void, nil
		}),
	)
}

// Install imports the playback functions into the runtime under
// [PackageName]. They are called qualified, as in [story.jump end].
func (p *Player) Install(ctx context.Context) error {
	return p.rt.Import(ctx, p.Package())
}
