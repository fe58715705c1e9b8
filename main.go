// Package main provides a banner entry point for y86sim, a Y86-64
// architectural simulator supporting the SEQ, SEQ+ and 5-stage PIPE
// microarchitectures from CS:APP.
//
// For the full CLI, use: go run ./cmd/y86sim
package main

import "fmt"

func main() {
	fmt.Println("y86sim - Y86-64 architectural simulator")
	fmt.Println("")
	fmt.Println("Usage: y86sim [options] <object file>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -arch      Architecture to simulate (seq_std, seq_plus_std, pipe_std)")
	fmt.Println("  -v         Verbose per-cycle dump")
	fmt.Println("  -config    Path to a YAML machine-descriptor overlay")
	fmt.Println("  -json      Path to write a structured JSON trace export")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/y86sim' for the full CLI.")
}
