package guest

import (
	"runtime"

	"github.com/CosmWasm/recovervm/types"
)

// Panic halts the program and reports loc to the host. It never returns.
func Panic(sys Syscalls, loc types.PanicLocation) {
	sys.Panic(loc)
	// a conforming host never gets here
	panic("guest: halt syscall returned")
}

// Assert halts the program at the caller's location when cond is false.
func Assert(sys Syscalls, cond bool) {
	if !cond {
		Panic(sys, caller(1))
	}
}

// Here returns the location of its caller, for use with Panic.
func Here() types.PanicLocation {
	return caller(1)
}

func caller(skip int) types.PanicLocation {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return types.PanicLocation{File: "unknown"}
	}
	return types.PanicLocation{File: file, Line: uint64(line)}
}
