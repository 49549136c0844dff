// Package testutil provides deterministic test corpora for fifo tests.
//
// # Overview
//
// The package generates the two data shapes the test suite streams through
// rings:
//
// Counter sequences - every byte is one greater than the byte before it,
// wrapping at 256. A consumer needs only the next expected value to verify
// an arbitrarily long stream, which makes the pattern natural for
// producer/consumer tests where chunk boundaries never align with ring
// boundaries.
//
// Record corpora - variable-length records whose length and content are
// pure functions of the record index. The producer and consumer sides of a
// test share nothing but the index.
//
// # Design Principles
//
// Deterministic: no random source, so a failure reproduces byte for byte
// without seeds or flags.
//
// Self-verifying: VerifySequence and VerifyRecord return errors naming the
// first divergence, which keeps goroutine test bodies free of index
// bookkeeping.
//
// Allocation-aware: FillSequence writes into a caller buffer so tight
// producer loops can reuse one chunk.
package testutil
