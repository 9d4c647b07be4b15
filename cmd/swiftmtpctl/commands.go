/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * The list/get/put/rm subcommands: thin glue between the CLI's
 * argument parsing and the service/actor/index packages that do the
 * actual work.
 */

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/swiftmtp/swiftmtp/actor"
	"github.com/swiftmtp/swiftmtp/index"
	"github.com/swiftmtp/swiftmtp/protocol"
	"github.com/swiftmtp/swiftmtp/ptp"
)

// syncIndex refreshes ix's records for (storageID, parent) from the
// live device, pairing GetObjectHandles with GetObjectInfos by
// position the same way a fresh actor.List enumeration would, then
// replaces every record the index held for deviceID, in any storage
// or parent, with the records found under (storageID, parent).
// It runs under the actor's own transaction serialization so it
// never overlaps a concurrently dispatched List/Read/Write.
func syncIndex(ctx context.Context, a *actor.Actor, ix *index.Index, deviceID string, storageID, parent uint32) ([]index.ObjectRecord, error) {
	v, err := a.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		handles, err := protocol.GetObjectHandles(ctx, a.Link, storageID, parent)
		if err != nil {
			return nil, err
		}
		if len(handles) == 0 {
			return []index.ObjectRecord{}, nil
		}
		datasets, err := protocol.GetObjectInfos(ctx, a.Link, handles)
		if err != nil {
			return nil, err
		}
		records := make([]index.ObjectRecord, len(handles))
		for i, h := range handles {
			ds := datasets[i]
			records[i] = index.ObjectRecord{
				DeviceID:         deviceID,
				Handle:           h,
				StorageID:        ds.StorageID,
				Parent:           ds.Parent,
				Format:           ds.Format,
				AssociationType:  ds.AssociationType,
				Size:             uint64(ds.Size),
				Filename:         ds.Filename,
				CaptureDate:      ds.CaptureDate,
				ModificationDate: ds.ModificationDate,
			}
		}
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	records := v.([]index.ObjectRecord)
	if err := ix.ReplaceAll(ctx, deviceID, records); err != nil {
		return nil, err
	}
	return records, nil
}

// cmdList refreshes the index for (storageID, parent) and prints what
// it found.
func cmdList(ctx context.Context, sess *deviceSession, ix *index.Index, storageID, parent uint32) error {
	records, err := syncIndex(ctx, sess.Actor, ix, demoDeviceSummary.ID, storageID, parent)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	for _, rec := range records {
		fmt.Printf("%-10d %-10d %10d  %s\n", rec.Handle, rec.Format, rec.Size, rec.Filename)
	}
	return nil
}

// cmdGet downloads handle's content to localPath, consulting the
// index for its size when available.
func cmdGet(ctx context.Context, sess *deviceSession, ix *index.Index, handle uint32, localPath string) error {
	rec, ok, err := ix.Get(ctx, demoDeviceSummary.ID, handle)
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}

	length := uint32(0xFFFFFFFF) // unbounded: read to EOF
	if ok && rec.Size > 0 && rec.Size <= uint64(^uint32(0)) {
		length = uint32(rec.Size)
	}

	n, err := sess.Service.ReadObject(ctx, handle, 0, length, fileSink{f}, priorityForCLI, deadlineForCLI)
	if err != nil {
		os.Remove(localPath)
		return fmt.Errorf("get: %w", err)
	}
	fmt.Printf("wrote %d bytes to %s\n", n, localPath)
	return nil
}

// cmdPut uploads localPath into (storageID, parent), naming the
// object after localPath's base name.
func cmdPut(ctx context.Context, sess *deviceSession, storageID, parent uint32, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("put: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("put: %w", err)
	}

	name := st.Name()
	req := actor.WriteRequest{
		StorageID: storageID,
		Parent:    parent,
		Name:      name,
		Size:      uint64(st.Size()),
		Format:    ptp.FormatForFilename(name),
		Source:    fileSource{f},
	}

	handle, err := sess.Service.WriteObject(ctx, req, priorityForCLI, deadlineForCLI)
	if err != nil {
		return fmt.Errorf("put: %w", err)
	}
	fmt.Printf("wrote object handle=%d\n", handle)
	return nil
}

// cmdRemove deletes handle from storageID, recursively if requested,
// and evicts handle's own record from the index; records of its
// children are left in the index.
func cmdRemove(ctx context.Context, sess *deviceSession, ix *index.Index, storageID, handle uint32, recursive bool) error {
	if err := sess.Service.DeleteObject(ctx, storageID, handle, recursive, priorityForCLI, deadlineForCLI); err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	if err := ix.Delete(ctx, demoDeviceSummary.ID, handle); err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	fmt.Printf("deleted handle=%d\n", handle)
	return nil
}
