package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/athenavm/athena-go/pkg/athinterface"
	"github.com/athenavm/athena-go/pkg/loader"
	"github.com/athenavm/athena-go/pkg/log"
	"github.com/athenavm/athena-go/pkg/mockhost"
	"github.com/athenavm/athena-go/pkg/vm"
)

func main() {
	app := cli.NewApp()
	app.Name = "athena-run"
	app.Usage = "run an Athena RV32E+M program against an in-memory host"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "file, f", Usage: "ELF or raw instruction blob to run"},
		cli.StringFlag{Name: "method, m", Usage: "exported method name to call; default entry point if empty"},
		cli.Uint64Flag{Name: "max-gas, g", Usage: "gas limit; 0 means unlimited"},
		cli.StringFlag{Name: "input, i", Usage: "hex-encoded calldata handed to the method"},
		cli.BoolFlag{Name: "verbose, v", Usage: "enable debug logging"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "athena-run:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Bool("verbose") {
		log.SetDefault(log.New(slog.LevelDebug))
	}

	filename := c.String("file")
	if filename == "" {
		return cli.NewExitError("missing -file", 2)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	program, err := loader.Load(data)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("failed to load program: %v", err), 1)
	}

	input, err := hex.DecodeString(c.String("input"))
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("invalid -input hex: %v", err), 2)
	}

	host := mockhost.New()
	var opts []vm.Option
	if g := c.Uint64("max-gas"); g > 0 {
		opts = append(opts, vm.WithMaxGas(uint32(g)))
	}

	var callee athinterface.Address
	athCtx := athinterface.NewAthenaContext(callee, athinterface.NewCallerBuilder(callee).Build(), 0, 0)
	runtime := vm.New(program, host, vm.Options(opts...), &athCtx)
	runtime.WriteStdin(input)

	method := c.String("method")
	var gasLeft *uint32
	if method == "" {
		gasLeft, err = runtime.Execute()
	} else {
		gasLeft, err = runtime.ExecuteFunctionByName(method)
	}

	if err != nil {
		var execErr *vm.ExecutionError
		if errors.As(err, &execErr) {
			return cli.NewExitError(fmt.Sprintf("execution failed: %s", execErr), 1)
		}
		return cli.NewExitError(fmt.Sprintf("execution failed: %v", err), 1)
	}

	fmt.Printf("public values: %x\n", runtime.State.PublicValuesStream)
	if gasLeft != nil {
		fmt.Printf("gas left: %d\n", *gasLeft)
	} else {
		fmt.Println("gas left: unlimited")
	}
	return nil
}
