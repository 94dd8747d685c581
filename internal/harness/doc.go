// Package harness runs program scenarios as executable regression tests.
//
// A scenario names a program, a term window and the expected behavior of
// evaluation and minimization. The harness evaluates the program, minimizes
// it with optimization enabled, records both versions in a fresh in-memory
// store and checks the expectations.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: squares
//	description: "Squares by summing odd numbers collapse to pow"
//	program: |
//	  mov $1,1
//	  lpb $0
//	    sub $0,1
//	    add $2,$1
//	    add $1,2
//	  lpe
//	  mov $0,$2
//	terms: 10
//	expect:
//	  sequence: [0, 1, 4, 9, 16, 25, 36, 49, 64, 81]
//	  minimized: |
//	    pow $0,2
//	  formula: "a(n) = n^2"
//	assertions:
//	  - type: size_at_most
//	    size: 1
//	  - type: loop_free
//
// Unknown fields are rejected, so typos fail loudly.
//
// # Assertion Types
//
//   - size_at_most: the minimized program has at most Size operations
//   - loop_free: the minimized program contains no loop
//   - unchanged: minimization leaves the program as it was
//   - changed: minimization shrinks the program
//
// # Golden Files
//
// RunWithGolden snapshots the result as canonical JSON under
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
