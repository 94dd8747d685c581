// Package optimizer applies local, semantics-preserving rewrites to programs.
//
// Optimize runs its passes until none of them changes the program, so
// optimizing an optimized program is a no-op. The passes are:
//   - removeNops drops operations without effect, including empty loops
//   - simplify rewrites operations with a known result into mov
//   - merge combines adjacent operations on the same direct cell
//   - propagate substitutes and folds constants through straight-line code
//   - eliminateDeadStores drops writes whose value is never read
//
// The data-flow passes (propagate and eliminateDeadStores) need every memory
// access to be statically known and are skipped for programs that use
// indirect operands.
//
// Observable output is preserved for every input whose evaluation succeeds.
// An operation that would fail but whose result is dead may be removed, so an
// optimized program can succeed where the original failed.
package optimizer
