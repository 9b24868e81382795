package windhager

import (
	"context"
	"sort"
	"time"

	"windhager_gateway/internal/models"
)

// FetchAll runs one full fetch cycle: rebuild the device list and required
// OID set from the specification, look up every OID once, and assemble the
// snapshot. It never fails outward; an unreachable or erroring point
// degrades to an absent value for that point only, and a total outage
// degrades every point while the device list stays fully populated.
func (c *Client) FetchAll(ctx context.Context) *models.Snapshot {
	devices, required := BuildDevices(c.host, c.spec)

	snap := &models.Snapshot{
		Devices: devices,
		OIDs:    make(map[string]*string, len(required)),
		Units:   make(map[string]string),
		Meta: models.Meta{
			EcoDefaultDurationMinutes: c.eco.Get(),
		},
		FetchedAt: time.Now().UTC(),
	}

	// Sorted order keeps logs reproducible; the result maps are
	// order-independent.
	for _, oid := range sortedOIDs(required) {
		c.fetchOne(ctx, oid, snap)
	}
	return snap
}

// fetchOne looks up a single OID and classifies the outcome: transport or
// auth failure and a missing value field record the OID as absent (no
// unit); a sentinel "unknown" value records it as absent but keeps the
// unit; anything else is recorded verbatim.
func (c *Client) fetchOne(ctx context.Context, oid string, snap *models.Snapshot) {
	res, err := c.Lookup(ctx, oid)
	if err != nil {
		c.log.Warnw("lookup degraded to absent", "oid", oid, "err", err)
		snap.OIDs[oid] = nil
		return
	}
	if res.Value == nil {
		c.log.Warnw("lookup response without value", "oid", oid)
		snap.OIDs[oid] = nil
		return
	}
	if res.Unit != nil {
		snap.Units[oid] = *res.Unit
	}
	if c.spec.IsUnknownValue(*res.Value) {
		c.log.Debugw("sentinel value treated as absent", "oid", oid, "raw", *res.Value)
		snap.OIDs[oid] = nil
		return
	}
	snap.OIDs[oid] = res.Value
}

func sortedOIDs(set map[string]struct{}) []string {
	oids := make([]string, 0, len(set))
	for oid := range set {
		oids = append(oids, oid)
	}
	sort.Strings(oids)
	return oids
}
