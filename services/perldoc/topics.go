// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package perldoc

import (
	"slices"
	"strings"
)

// builtinFunctions are the names perldoc -f knows about (perlfunc).
var builtinFunctions = []string{
	"abs", "accept", "alarm", "atan2", "bind", "binmode", "bless", "caller",
	"chdir", "chmod", "chomp", "chop", "chown", "chr", "chroot", "close",
	"closedir", "connect", "cos", "crypt", "dbmclose", "dbmopen", "defined",
	"delete", "die", "do", "dump", "each", "eof", "eval", "exec", "exists",
	"exit", "exp", "fcntl", "fileno", "flock", "fork", "format", "formline",
	"getc", "getlogin", "getpeername", "getpgrp", "getppid", "getpriority",
	"glob", "gmtime", "goto", "grep", "hex", "index", "int", "ioctl", "join",
	"keys", "kill", "last", "lc", "lcfirst", "length", "link", "listen",
	"local", "localtime", "lock", "log", "lstat", "map", "mkdir", "msgctl",
	"msgget", "msgrcv", "msgsnd", "my", "next", "no", "oct", "open",
	"opendir", "ord", "our", "pack", "package", "pipe", "pop", "pos",
	"print", "printf", "prototype", "push", "quotemeta", "rand", "read",
	"readdir", "readline", "readlink", "readpipe", "recv", "redo", "ref",
	"rename", "require", "reset", "return", "reverse", "rewinddir", "rindex",
	"rmdir", "say", "scalar", "seek", "seekdir", "select", "semctl", "semget",
	"semop", "send", "setpgrp", "setpriority", "shift", "shmctl", "shmget",
	"shmread", "shmwrite", "shutdown", "sin", "sleep", "socket", "socketpair",
	"sort", "splice", "split", "sprintf", "sqrt", "srand", "stat", "state",
	"study", "sub", "substr", "symlink", "syscall", "sysopen", "sysread",
	"sysseek", "system", "syswrite", "tell", "telldir", "tie", "tied", "time",
	"times", "truncate", "uc", "ucfirst", "umask", "undef", "unlink", "unpack",
	"unshift", "untie", "use", "utime", "values", "vec", "wait", "waitpid",
	"wantarray", "warn", "write",
}

// corePages are documentation pages shipped with perl.
var corePages = []string{
	"perl", "perlintro", "perltoc", "perlsyn", "perldata", "perlop", "perlsub",
	"perlfunc", "perlvar", "perlre", "perlretut", "perlrequick", "perlref",
	"perlreftut", "perldsc", "perllol", "perlobj", "perlootut", "perlmod",
	"perlmodlib", "perlpod", "perlrun", "perldiag", "perlstyle", "perlsec",
	"perlipc", "perlcheat", "perldebug", "perlunicode", "perluniintro",
	"perlport", "perlpacktut", "perlform", "perltrap", "perlthrtut",
	"perlperf", "perlxs", "perlembed", "perlapi", "perlguts", "perlcall",
	"perldoc", "perlfaq", "perlfaq1", "perlfaq2", "perlfaq3", "perlfaq4",
	"perlfaq5", "perlfaq6", "perlfaq7", "perlfaq8", "perlfaq9", "perlopentut",
	"perltie", "perlvms", "perlwin32",
}

// Topics returns known function and page names starting with prefix,
// sorted and deduplicated. Matching is case-sensitive, as perldoc is.
func Topics(prefix string) []string {
	out := make([]string, 0, 16)
	for _, list := range [][]string{builtinFunctions, corePages} {
		for _, name := range list {
			if strings.HasPrefix(name, prefix) {
				out = append(out, name)
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
