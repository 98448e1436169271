// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/ezrec/vm8/cpu"
	"github.com/ezrec/vm8/emulator"
)

var (
	verbose  bool
	debug    bool
	dump     string
	printMem bool
)

var rootCmd = &cobra.Command{
	Use:   "vm8 [flags] binary",
	Short: "Run a vm8 flat binary image",
	Long: `vm8 loads a flat binary image into the program store and runs it
until a NOP is executed or the program counter runs off the end of the
image. The data store can be written to a file or printed afterwards.
`,
	Args:         cobra.ExactArgs(1),
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose mode")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Trace each executed instruction")
	rootCmd.Flags().StringVar(&dump, "dump", "", "Write the data store to a file")
	rootCmd.Flags().Lookup("dump").NoOptDefVal = "memory.dump"
	rootCmd.Flags().BoolVar(&printMem, "print", false, "Print the non-zero data store cells")
}

func run(cmd *cobra.Command, args []string) (err error) {
	inf, err := os.Open(args[0])
	if err != nil {
		return
	}
	defer inf.Close()

	prog := &cpu.Program{}
	_, err = prog.ReadFrom(inf)
	if err != nil {
		return fmt.Errorf("%v: %w", args[0], err)
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.Trace = debug
	emu.Output = cmd.OutOrStdout()

	err = emu.Load(prog)
	if err != nil {
		return fmt.Errorf("%v: %w", args[0], err)
	}

	if debug {
		fmt.Fprintf(emu.Output, "% x\n", prog.Binary())
	}

	// A runtime error still leaves a data store worth inspecting.
	runErr := emu.Run()
	if runErr != nil {
		log.Printf("%v: %v", args[0], runErr)
	}

	if len(dump) != 0 {
		ouf, err := os.Create(dump)
		if err != nil {
			return err
		}
		atexit.Register(func() { ouf.Close() })

		_, err = emu.DumpMemory(ouf)
		if err != nil {
			return fmt.Errorf("%v: %w", dump, err)
		}
	}

	if printMem {
		err = emu.PrintMemory(emu.Output)
		if err == nil && verbose {
			err = emu.PrintRegisters(emu.Output)
		}
		if err != nil {
			return
		}
	}

	if runErr != nil {
		atexit.Exit(1)
	}

	return
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("vm8: ")

	err := rootCmd.Execute()
	if err != nil {
		log.Print(err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
