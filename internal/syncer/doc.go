// Package syncer runs the copyright header synchronization over a
// repository.
//
// # Overview
//
// A run lists the files tracked at a ref, drops the ignored ones and
// processes the rest on a bounded worker pool:
//
//	tracked files (ref)
//	     │ ignore predicate
//	     ▼
//	comment style ──► history range ──► scan + merge ──► change gate ──► atomic write
//	                                                                         │
//	                                                          Result ◄───────┘
//
// Each file ends with exactly one Outcome. Per-file failures never stop the
// run; they are collected in the Summary, whose ExitCode is non-zero when a
// file failed, was blocked by uncommitted changes, or is outdated in check
// mode.
//
// # Usage
//
//	v, err := vcs.Open(".")
//	if err != nil {
//	    return err
//	}
//	s, err := syncer.New(v, syncer.Options{
//	    Holder:   cfg.Holder,
//	    Resolver: cfg.Resolver(),
//	    Ignore:   matcher,
//	    Logger:   logger,
//	})
//	if err != nil {
//	    return err
//	}
//	sum, err := s.Run(ctx)
//
// # Concurrency
//
// Files are independent. Workers send their Result over a channel to a
// single collector, so no per-file state is shared. The candidate set is
// deduplicated by the VCS layer, so no two workers touch the same path.
package syncer
