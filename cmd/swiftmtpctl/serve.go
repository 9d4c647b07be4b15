/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * serve mode: runs the daemon forever, serving the bundled virtual
 * device over the control socket until signaled to stop. The real
 * discovery/attach loop a production daemon would run against actual
 * USB hardware lives outside this module's scope (spec.md §1); this
 * stands in the one device SWIFTMTP_DEMO_MODE provides.
 */

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/swiftmtp/swiftmtp/index"
	"github.com/swiftmtp/swiftmtp/internal/config"
	"github.com/swiftmtp/swiftmtp/internal/logging"
	"github.com/swiftmtp/swiftmtp/protocol"
	"github.com/swiftmtp/swiftmtp/service"
)

func runServe(cfg config.Configuration, env runtimeEnv, log *logging.Logger) int {
	if !env.DemoMode {
		msg := log.Begin()
		msg.Error("serve: no transport backend available; set %s=1 to run against the bundled virtual device", envDemoMode)
		msg.Commit()
		return exitUnavailable
	}

	if err := ensureStateDirs(cfg); err != nil {
		msg := log.Begin()
		msg.Error("serve: %s", err)
		msg.Commit()
		return exitSoftware
	}

	lock, err := config.AcquireLock(cfg.LockFile)
	if err != nil {
		msg := log.Begin()
		msg.Error("serve: %s", err)
		msg.Commit()
		if err == config.ErrLockBusy {
			return exitUnavailable
		}
		return exitSoftware
	}
	defer lock.Release()

	ix, err := index.Open(cfg.IndexPath)
	if err != nil {
		msg := log.Begin()
		msg.Error("serve: %s", err)
		msg.Commit()
		return exitSoftware
	}
	defer ix.Close()

	ctx := context.Background()
	sess, err := openDemoDevice(ctx, cfg, env)
	if err != nil {
		msg := log.Begin()
		msg.Error("serve: %s", err)
		msg.Commit()
		return exitUnavailable
	}
	defer sess.Close()

	registry := service.NewRegistry()
	registry.Register(service.DeviceId(demoDeviceSummary.ID), sess.Service, nil)

	startedAt := time.Now()
	ctrl := newCtrlsockServer(cfg.ControlSocket, func() daemonStatus {
		return daemonStatus{
			Pid:        os.Getpid(),
			StartedAt:  startedAt,
			DeviceID:   demoDeviceSummary.ID,
			DeviceMode: fmt.Sprint(sess.Actor.State().Kind),
		}
	})
	if err := ctrl.Start(); err != nil {
		msg := log.Begin()
		msg.Error("serve: control socket: %s", err)
		msg.Commit()
		return exitSoftware
	}
	defer ctrl.Stop()

	msg := log.Begin()
	msg.Info("swiftmtp daemon started, pid=%d", os.Getpid())
	msg.Commit()

	if _, err := syncIndex(ctx, sess.Actor, ix, demoDeviceSummary.ID, firstStorageID(ctx, sess), 0); err != nil {
		msg := log.Begin()
		msg.Debug("serve: initial index sync: %s", err)
		msg.Commit()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	registry.Unregister(service.DeviceId(demoDeviceSummary.ID))

	msg = log.Begin()
	msg.Info("swiftmtp daemon stopping")
	msg.Commit()
	return exitOK
}

// firstStorageID returns the demo device's first storage id, so the
// daemon's startup index sync has something concrete to scope to.
func firstStorageID(ctx context.Context, sess *deviceSession) uint32 {
	v, err := sess.Actor.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return protocol.GetStorageIDs(ctx, sess.Actor.Link)
	})
	if err != nil {
		return 0
	}
	ids := v.([]uint32)
	if len(ids) == 0 {
		return 0
	}
	return ids[0]
}
