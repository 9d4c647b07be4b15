/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Demo device wiring: the CLI's only concrete transport.Link is the
 * virtual test device, since the real USB transport is an external
 * collaborator (spec.md §1 Non-goals, §6) this module never
 * implements. Every run mode that needs a device requires
 * SWIFTMTP_DEMO_MODE; without it there is nothing to attach to.
 */

package main

import (
	"context"
	"fmt"

	"github.com/swiftmtp/swiftmtp/actor"
	"github.com/swiftmtp/swiftmtp/internal/config"
	"github.com/swiftmtp/swiftmtp/mock"
	"github.com/swiftmtp/swiftmtp/quirk"
	"github.com/swiftmtp/swiftmtp/service"
	"github.com/swiftmtp/swiftmtp/transport"
)

// demoIdentity is the fixed USB identity of the bundled virtual
// Pixel 7 fixture, used for fingerprinting and quirk matching.
var demoIdentity = quirk.Identity{
	VID:       0x18d1, // Google
	PID:       0x4ee1,
	Iface:     quirk.InterfaceTriple{Class: 0x06},
	Endpoints: quirk.Endpoints{In: 0x81, Out: 0x02},
}

// demoDeviceSummary mirrors demoIdentity in the shape the rest of the
// module (and a real discovery backend) would hand the engine.
var demoDeviceSummary = transport.DeviceSummary{
	ID:           "demo-pixel7",
	Manufacturer: "Google",
	Model:        "Pixel 7",
	VID:          demoIdentity.VID,
	PID:          demoIdentity.PID,
	IfaceClass:   demoIdentity.Iface.Class,
	EndpointIn:   demoIdentity.Endpoints.In,
	EndpointOut:  demoIdentity.Endpoints.Out,
}

// deviceSession bundles the actor, service and virtual link opened
// for one CLI invocation or daemon lifetime.
type deviceSession struct {
	Link    *mock.Device
	Actor   *actor.Actor
	Service *service.Service
}

// openDemoDevice builds a Policy for the bundled virtual device from
// cfg/env, opens its session, and returns the actor driving it.
func openDemoDevice(ctx context.Context, cfg config.Configuration, env runtimeEnv) (*deviceSession, error) {
	link := mock.NewPixel7()

	mode := quirk.ModeNormal
	if cfg.StrictMode {
		mode = quirk.ModeStrict
	}

	profiles := config.NewProfileStore(cfg.ProfileDir)
	learned, hasLearned, err := profiles.Load(quirk.Fingerprint(demoIdentity))
	if err != nil {
		return nil, fmt.Errorf("profile store: %w", err)
	}

	build := quirk.BuildInput{
		Identity:       demoIdentity,
		IfaceClass:     demoIdentity.Iface.Class,
		Mode:           mode,
		SafeMode:       cfg.SafeMode,
		Learned:        learned,
		HasLearned:     hasLearned,
		DeniedQuirkIDs: mergeDeniedQuirks(cfg.DeniedQuirkIDs, env.DeniedQuirkIDs),
		UserOverride:   env.UserOverride,
	}
	policy := quirk.BuildPolicy(build)

	a := actor.New(link, policy)

	opener := actor.SessionOpener{
		ProbeCapabilities: func(ctx context.Context) (quirk.ProbeReceipt, error) {
			return quirk.ProbeReceipt{}, nil
		},
		BuildPolicy: func(probe quirk.ProbeReceipt, hasProbe bool) quirk.Policy {
			build.Probe = probe
			build.HasProbe = hasProbe
			return quirk.BuildPolicy(build)
		},
	}
	if err := a.OpenIfNeeded(ctx, opener); err != nil {
		a.Stop()
		return nil, fmt.Errorf("open session: %w", err)
	}

	return &deviceSession{Link: link, Actor: a, Service: service.New(a)}, nil
}

// Close stops the service and the underlying actor, then the link.
func (d *deviceSession) Close() {
	d.Service.Stop()
	d.Actor.Stop()
	d.Link.Close()
}
