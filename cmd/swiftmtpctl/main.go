/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * CLI entry point. Thin by design (spec.md §1 scopes CLI argument
 * parsing and output envelopes out of the core); this file only
 * parses a mode word and dispatches, mirroring the teacher's
 * mode-keyword main.go shape with modes renamed to the daemon
 * lifecycle this engine actually has: serve/once/check/status in
 * place of standalone/udev/debug/check/status.
 */

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/swiftmtp/swiftmtp/index"
	"github.com/swiftmtp/swiftmtp/internal/config"
	"github.com/swiftmtp/swiftmtp/internal/logging"
	"github.com/swiftmtp/swiftmtp/service"
)

const usageText = `Usage:
    %s mode [args...]

Modes are:
    serve                         run the daemon, serving the demo device
    once SUBCOMMAND [args...]     run one operation and exit
    check                         validate configuration and exit
    status                        print daemon status and exit

Subcommands for "once" are:
    list   storage parent
    get    handle local-path
    put    storage parent local-path
    rm     storage handle [recursive]

Environment:
    SWIFTMTP_DEMO_MODE=1    attach the bundled virtual device
    SWIFTMTP_TRACE_USB=1    accepted; no transport traces are emitted
`

var (
	priorityForCLI = service.PriorityMedium
	deadlineForCLI = service.Deadline{TimeoutSecs: 30, MaxRetries: 1}
)

func usage() {
	fmt.Printf(usageText, os.Args[0])
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "-help" || args[0] == "--help" {
		usage()
		if len(args) == 0 {
			return exitUsage
		}
		return exitOK
	}

	cfg, err := config.LoadDefaultLocations()
	if err != nil {
		writeErrorEnvelope(os.Stderr, err, args[0], nil)
		return exitSoftware
	}
	env := readEnv()

	log := logging.New()
	if cfg.ColorConsole {
		log.ToColorConsole()
	} else {
		log.ToConsole()
	}

	mode := args[0]
	rest := args[1:]

	switch mode {
	case "serve":
		return runServe(cfg, env, log)
	case "once":
		return runOnce(cfg, env, rest)
	case "check":
		return runCheck(cfg)
	case "status":
		return runStatus(cfg)
	default:
		usage()
		return exitUsage
	}
}

func runCheck(cfg config.Configuration) int {
	fmt.Println("Configuration: OK")
	fmt.Printf("  profile dir:     %s\n", cfg.ProfileDir)
	fmt.Printf("  lock file:       %s\n", cfg.LockFile)
	fmt.Printf("  control socket:  %s\n", cfg.ControlSocket)
	fmt.Printf("  index path:      %s\n", cfg.IndexPath)
	return exitOK
}

func runStatus(cfg config.Configuration) int {
	st, err := fetchStatus(cfg.ControlSocket)
	if err != nil {
		writeErrorEnvelope(os.Stderr, err, "status", nil)
		return exitUnavailable
	}
	fmt.Printf("pid=%d device=%s state=%s started=%s\n", st.Pid, st.DeviceID, st.DeviceMode, st.StartedAt.Format("2006-01-02 15:04:05"))
	return exitOK
}

func runOnce(cfg config.Configuration, env runtimeEnv, args []string) int {
	if len(args) == 0 {
		usage()
		return exitUsage
	}

	if !env.DemoMode {
		err := fmt.Errorf("once: no transport backend available; set %s=1 to run against the bundled virtual device", envDemoMode)
		writeErrorEnvelope(os.Stderr, err, "once", nil)
		return exitUnavailable
	}

	if err := ensureStateDirs(cfg); err != nil {
		writeErrorEnvelope(os.Stderr, err, "once", nil)
		return exitSoftware
	}

	ix, err := index.Open(cfg.IndexPath)
	if err != nil {
		writeErrorEnvelope(os.Stderr, err, "once", nil)
		return exitSoftware
	}
	defer ix.Close()

	ctx := context.Background()
	sess, err := openDemoDevice(ctx, cfg, env)
	if err != nil {
		writeErrorEnvelope(os.Stderr, err, "once", nil)
		return exitUnavailable
	}
	defer sess.Close()

	sub, subArgs := args[0], args[1:]

	var cmdErr error
	switch sub {
	case "list":
		storageID, parent, perr := parseStorageParent(subArgs)
		if perr != nil {
			cmdErr = perr
			break
		}
		cmdErr = cmdList(ctx, sess, ix, storageID, parent)

	case "get":
		if len(subArgs) != 2 {
			cmdErr = usageErrorf("get: usage: get handle local-path")
			break
		}
		handle, perr := parseUint32(subArgs[0])
		if perr != nil {
			cmdErr = perr
			break
		}
		cmdErr = cmdGet(ctx, sess, ix, handle, subArgs[1])

	case "put":
		if len(subArgs) != 3 {
			cmdErr = usageErrorf("put: usage: put storage parent local-path")
			break
		}
		storageID, perr := parseUint32(subArgs[0])
		if perr != nil {
			cmdErr = perr
			break
		}
		parent, perr := parseUint32(subArgs[1])
		if perr != nil {
			cmdErr = perr
			break
		}
		cmdErr = cmdPut(ctx, sess, storageID, parent, subArgs[2])

	case "rm":
		if len(subArgs) < 2 || len(subArgs) > 3 {
			cmdErr = usageErrorf("rm: usage: rm storage handle [recursive]")
			break
		}
		storageID, perr := parseUint32(subArgs[0])
		if perr != nil {
			cmdErr = perr
			break
		}
		handle, perr := parseUint32(subArgs[1])
		if perr != nil {
			cmdErr = perr
			break
		}
		recursive := len(subArgs) == 3 && subArgs[2] == "recursive"
		cmdErr = cmdRemove(ctx, sess, ix, storageID, handle, recursive)

	default:
		usage()
		return exitUsage
	}

	if cmdErr != nil {
		writeErrorEnvelope(os.Stderr, cmdErr, "once", map[string]string{"subcommand": sub})
		return exitCodeFor(cmdErr)
	}
	return exitOK
}

func parseStorageParent(args []string) (storageID, parent uint32, err error) {
	if len(args) != 2 {
		return 0, 0, usageErrorf("list: usage: list storage parent")
	}
	storageID, err = parseUint32(args[0])
	if err != nil {
		return 0, 0, err
	}
	parent, err = parseUint32(args[1])
	if err != nil {
		return 0, 0, err
	}
	return storageID, parent, nil
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, usageErrorf("invalid numeric argument %q: %s", s, err)
	}
	return uint32(v), nil
}
