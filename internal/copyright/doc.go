// Package copyright implements copyright header synchronization for a
// single file: year range arithmetic, comment style resolution, detection
// of an existing notice, and the byte-exact rewrite of the file header.
//
// # Notice grammar
//
// The writer emits, and the scanner recognises:
//
//	<comment-open>Copyright (c) <range> <holder><comment-close>
//
// where <range> is "YYYY" or "YYYY-YYYY". The scanner also accepts common
// hand-written variants ("Copyright 2019 Foo", "© 2019 Foo",
// "(c) Copyright Foo 2019") so that they are replaced by the canonical
// form instead of duplicated.
//
// # Idempotence
//
// Nothing is cached between files or runs. Running Plan on its own output
// with the same history range yields identical bytes, so a second run over
// a processed tree writes nothing.
package copyright
