// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezrec/vm8/cpu"
	"github.com/ezrec/vm8/emulator"
	"github.com/ezrec/vm8/translate"
)

var (
	verbose bool
	defines []string
)

var rootCmd = &cobra.Command{
	Use:   "vm8asm [flags] source binary",
	Short: "Assemble vm8 source into a flat binary image",
	Long: `vm8asm assembles one source file into a flat binary image for the
vm8 interpreter. The image has no header; byte 0 is the first instruction.

Labels may be referenced before they are defined. The emulator's memory
sizes and register numbers are predefined as equates.
`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return assemble(cmd.OutOrStdout(), args[0], args[1])
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose mode")
	rootCmd.Flags().StringArrayVarP(&defines, "define", "D", nil, "Predefine an equate as NAME=VALUE")
}

func assemble(w io.Writer, source string, binary string) (err error) {
	inf, err := os.Open(source)
	if err != nil {
		return
	}
	defer inf.Close()

	asm := &cpu.Assembler{Verbose: verbose}
	for key, value := range emulator.NewEmulator().Defines() {
		asm.Predefine(key, value)
	}
	for _, define := range defines {
		key, value, ok := strings.Cut(define, "=")
		if !ok {
			return fmt.Errorf("-D %v: expected NAME=VALUE", define)
		}
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(inf)
	if err != nil {
		return fmt.Errorf("%v: %w", source, err)
	}

	for _, st := range prog.Statements {
		fmt.Fprintf(w, "%04x: %-10s %v\n", st.Addr, fmt.Sprintf("% x", st.Inst.Bytes()), st.Inst)
	}
	translate.Fprintf(w, "Program size: %d bytes\n", len(prog.Binary()))

	ouf, err := os.Create(binary)
	if err != nil {
		return
	}
	defer func() {
		cerr := ouf.Close()
		if err == nil {
			err = cerr
		}
	}()

	_, err = prog.WriteTo(ouf)
	return
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("vm8asm: ")

	err := rootCmd.Execute()
	if err != nil {
		log.Fatal(err)
	}
}
