package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/circuit-bridge/bridge"
	"github.com/wippyai/circuit-bridge/field"
	"github.com/wippyai/circuit-bridge/wasmcore"
)

var stepOps = []string{
	"step_compute_accum",
	"step_verify_accum",
	"step_exec",
	"step_verify_bytes",
	"step_verify_mem",
}

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to circuit wasm file")
		op          = flag.String("op", "step_exec", "Step operation to run")
		steps       = flag.Uint64("steps", 16, "Total trace length")
		bufs        = flag.Int("bufs", 4, "Number of column buffers")
		bufLen      = flag.Int("buflen", 32, "Field elements per column buffer")
		refuseAt    = flag.Int("refuse-at", 0, "Refuse the Nth callback invocation (0 = never)")
		list        = flag.Bool("list", false, "List step operations and exit")
		interactive = flag.Bool("i", false, "Interactive cycle stepper")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *list {
		for _, name := range stepOps {
			fmt.Println(name)
		}
		fmt.Println("poly_fp")
		return
	}

	if *wasmFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: bridge-run -wasm <circuit.wasm> [-op step_exec] [-steps N]")
		fmt.Fprintln(os.Stderr, "       bridge-run -wasm <circuit.wasm> -i  (interactive mode)")
		fmt.Fprintln(os.Stderr, "       bridge-run -list")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		bridge.SetLogger(logger)
		wasmcore.SetLogger(logger)
	}

	wasmBytes, err := os.ReadFile(*wasmFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read wasm: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	core, err := wasmcore.New(ctx, wasmBytes, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load circuit: %v\n", err)
		os.Exit(1)
	}
	defer core.Close()

	run := &runState{
		br:       bridge.New(core),
		op:       *op,
		steps:    *steps,
		args:     makeArgs(*bufs, *bufLen),
		refuseAt: *refuseAt,
	}

	if !validOp(*op) {
		fmt.Fprintf(os.Stderr, "unknown op %q, see -list\n", *op)
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(run); err != nil {
			fmt.Fprintf(os.Stderr, "interactive: %v\n", err)
			os.Exit(1)
		}
		return
	}

	for cycle := uint64(0); cycle < run.steps; cycle++ {
		res := run.runCycle(cycle)
		if res.failed {
			fmt.Printf("cycle %d: FAILED code=%d msg=%q (callbacks so far: %d)\n",
				cycle, res.code, res.diag, run.callbacks)
			os.Exit(1)
		}
		fmt.Printf("cycle %d: %s\n", cycle, res.text)
	}
	fmt.Printf("%d cycles, %d callback invocations\n", run.steps, run.callbacks)
}

func validOp(op string) bool {
	if op == "poly_fp" {
		return true
	}
	for _, name := range stepOps {
		if name == op {
			return true
		}
	}
	return false
}

func makeArgs(bufs, bufLen int) [][]field.Fp {
	args := make([][]field.Fp, bufs)
	for i := range args {
		args[i] = make([]field.Fp, bufLen)
	}
	return args
}

// runState drives one operation across cycles with a recording callback.
type runState struct {
	br        *bridge.Bridge
	op        string
	steps     uint64
	args      [][]field.Fp
	callbacks int
	refuseAt  int
	log       []string
}

type cycleResult struct {
	text   string
	diag   string
	code   uint32
	failed bool
}

// hostCallback recovers the runState from the opaque context the bridge
// carried through the trampoline.
func hostCallback(ctx any, name, extra string, in, out []field.Fp) bool {
	return ctx.(*runState).record(name, extra, in, out)
}

// record notes every callback occasion and fills the output buffer with
// zero elements.
func (r *runState) record(name, extra string, in, out []field.Fp) bool {
	r.callbacks++
	r.log = append(r.log, fmt.Sprintf("#%d %s(%s) in=%d out=%d", r.callbacks, name, extra, len(in), len(out)))
	if r.refuseAt > 0 && r.callbacks == r.refuseAt {
		return false
	}
	for i := range out {
		out[i] = field.Fp{}
	}
	return true
}

func (r *runState) runCycle(cycle uint64) cycleResult {
	if r.op == "poly_fp" {
		ext := r.br.PolyFp(cycle, r.steps, field.FpExt{}, r.args)
		raw := ext.Raw()
		parts := make([]string, len(raw))
		for i, v := range raw {
			parts[i] = fmt.Sprintf("%08x", v)
		}
		return cycleResult{text: "ext " + strings.Join(parts, " ")}
	}

	var slot bridge.ErrorSlot
	var raw uint32
	switch r.op {
	case "step_compute_accum":
		raw = r.br.StepComputeAccum(&slot, r, hostCallback, r.steps, cycle, r.args)
	case "step_verify_accum":
		raw = r.br.StepVerifyAccum(&slot, r, hostCallback, r.steps, cycle, r.args)
	case "step_exec":
		raw = r.br.StepExec(&slot, r, hostCallback, r.steps, cycle, r.args)
	case "step_verify_bytes":
		raw = r.br.StepVerifyBytes(&slot, r, hostCallback, r.steps, cycle, r.args)
	case "step_verify_mem":
		raw = r.br.StepVerifyMem(&slot, r, hostCallback, r.steps, cycle, r.args)
	}

	if slot.Failed() {
		res := cycleResult{diag: slot.Msg.Value(), code: slot.Code, failed: true}
		slot.Release()
		return res
	}
	return cycleResult{text: fmt.Sprintf("%08x", raw)}
}
