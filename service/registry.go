/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Device service registry (§4.9): maps DeviceId to the Service
 * serializing that device, holds a bidirectional DeviceId<->DomainId
 * mapping for host UI integration, and dispatches the discovery
 * stream's attach/detach notifications concurrently.
 */

package service

import (
	"context"
	"sync"

	"github.com/swiftmtp/swiftmtp/transport"
	"golang.org/x/sync/errgroup"
)

// DeviceId identifies a device stably across reconnects when the
// underlying USB identity allows it.
type DeviceId string

// DomainId identifies a device from the perspective of whatever host
// subsystem the registry's caller is embedded in (e.g. a browser
// origin, a per-app sandbox token). It is opaque to this package.
type DomainId string

// AttachEvent reports a newly discovered device.
type AttachEvent struct {
	DeviceID DeviceId
	Summary  transport.DeviceSummary
}

// DetachEvent reports a device that disappeared from the bus.
type DetachEvent struct {
	DeviceID DeviceId
}

// Manager is the discovery stream StartMonitoring subscribes to.
type Manager interface {
	Attach() <-chan AttachEvent
	Detach() <-chan DetachEvent
}

// DeviceServiceRegistry owns every device's Service, an opaque
// per-device "orchestrator" value (the host UI's integration point,
// never inspected by this package), and the DeviceId<->DomainId
// mapping.
type DeviceServiceRegistry struct {
	mu            sync.Mutex
	services      map[DeviceId]*Service
	orchestrators map[DeviceId]any

	domainToDevice map[DomainId]DeviceId
	deviceToDomain map[DeviceId]DomainId

	monitorCancel context.CancelFunc
	monitorWG     sync.WaitGroup
}

// NewRegistry returns an empty registry.
func NewRegistry() *DeviceServiceRegistry {
	return &DeviceServiceRegistry{
		services:       make(map[DeviceId]*Service),
		orchestrators:  make(map[DeviceId]any),
		domainToDevice: make(map[DomainId]DeviceId),
		deviceToDomain: make(map[DeviceId]DomainId),
	}
}

// Register associates id with svc and an opaque orchestrator value,
// replacing any prior registration for id.
func (r *DeviceServiceRegistry) Register(id DeviceId, svc *Service, orchestrator any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[id] = svc
	r.orchestrators[id] = orchestrator
}

// Unregister removes id's service and orchestrator, and severs any
// DomainId mapping it held.
func (r *DeviceServiceRegistry) Unregister(id DeviceId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.services, id)
	delete(r.orchestrators, id)
	if domain, ok := r.deviceToDomain[id]; ok {
		delete(r.deviceToDomain, id)
		delete(r.domainToDevice, domain)
	}
}

// Get returns the Service registered for id, if any.
func (r *DeviceServiceRegistry) Get(id DeviceId) (*Service, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	svc, ok := r.services[id]
	return svc, ok
}

// Orchestrator returns the opaque value registered alongside id's
// service, if any.
func (r *DeviceServiceRegistry) Orchestrator(id DeviceId) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.orchestrators[id]
	return v, ok
}

// BindDomain records that domain now refers to device. Re-registering
// a DomainId evicts any prior reverse entry: if device was previously
// bound to a different domain, that domain's forward entry is
// removed, and likewise if domain was previously bound to a different
// device.
func (r *DeviceServiceRegistry) BindDomain(domain DomainId, device DeviceId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if oldDomain, ok := r.deviceToDomain[device]; ok && oldDomain != domain {
		delete(r.domainToDevice, oldDomain)
	}
	if oldDevice, ok := r.domainToDevice[domain]; ok && oldDevice != device {
		delete(r.deviceToDomain, oldDevice)
	}
	r.domainToDevice[domain] = device
	r.deviceToDomain[device] = domain
}

// DeviceForDomain resolves domain to the device currently bound to
// it, if any.
func (r *DeviceServiceRegistry) DeviceForDomain(domain DomainId) (DeviceId, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.domainToDevice[domain]
	return id, ok
}

// DomainForDevice resolves device to the domain currently bound to
// it, if any.
func (r *DeviceServiceRegistry) DomainForDevice(device DeviceId) (DomainId, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	domain, ok := r.deviceToDomain[device]
	return domain, ok
}

// HandleDetach closes id's service's disconnect gate.
func (r *DeviceServiceRegistry) HandleDetach(id DeviceId) {
	if svc, ok := r.Get(id); ok {
		svc.MarkDisconnected()
	}
}

// HandleReconnect reopens id's service's disconnect gate.
func (r *DeviceServiceRegistry) HandleReconnect(id DeviceId) {
	if svc, ok := r.Get(id); ok {
		svc.MarkReconnected()
	}
}

// StartMonitoring subscribes to manager's attach/detach stream and
// runs onAttach/onDetach as each event arrives. Attach handlers run
// concurrently via an errgroup, so a slow handler for one device
// never delays dispatching the next device's attach; detach handling
// stays synchronous on the dispatch loop since HandleDetach is just a
// flag flip.
func (r *DeviceServiceRegistry) StartMonitoring(manager Manager, onAttach func(AttachEvent), onDetach func(DetachEvent)) {
	ctx, cancel := context.WithCancel(context.Background())
	r.mu.Lock()
	r.monitorCancel = cancel
	r.mu.Unlock()

	r.monitorWG.Add(1)
	go func() {
		defer r.monitorWG.Done()

		var eg errgroup.Group
		attachCh := manager.Attach()
		detachCh := manager.Detach()

		for attachCh != nil || detachCh != nil {
			select {
			case ev, ok := <-attachCh:
				if !ok {
					attachCh = nil
					continue
				}
				eg.Go(func() error {
					onAttach(ev)
					return nil
				})
			case ev, ok := <-detachCh:
				if !ok {
					detachCh = nil
					continue
				}
				onDetach(ev)
			case <-ctx.Done():
				eg.Wait()
				return
			}
		}
		eg.Wait()
	}()
}

// StopMonitoring cancels the dispatch loop and waits for every
// in-flight attach handler to drain.
func (r *DeviceServiceRegistry) StopMonitoring() {
	r.mu.Lock()
	cancel := r.monitorCancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	r.monitorWG.Wait()
}
