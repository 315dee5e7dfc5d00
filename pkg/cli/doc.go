// Package cli carries the terminal-facing helpers of the switchyard
// command: output rendering, download progress, error types with exit
// codes, and signal wiring.
//
// Rendering is split by format. RenderHealth, RenderModels and
// RenderHistory produce aligned text tables; WriteJSON produces the raw
// structures for scripting. Commands pick one based on their --json
// flag:
//
//	if jsonOutput {
//	    return cli.WriteJSON(os.Stdout, sys)
//	}
//	return cli.RenderHealth(os.Stdout, sys)
//
// PullProgressPrinter renders model downloads in place:
//
//	printer := cli.NewPullProgressPrinter(os.Stdout)
//	defer printer.Finish()
//	err := mgr.PullModel(ctx, "mistral", printer.Update)
//
// SignalContext is the root context of the binary, cancelled on SIGINT
// and SIGTERM.
package cli
