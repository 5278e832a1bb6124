package connection

import (
	"context"
	"fmt"
	"time"

	"github.com/soxlink/soxlink-go/pkg/log"
	"github.com/soxlink/soxlink-go/pkg/node"
)

// VersionAction is the name of the per-endpoint version action.
const VersionAction = "version"

// Version result columns.
var versionColumns = []node.Column{
	{Name: "platformID", Type: node.String},
	{Name: "scodeFlags", Type: node.Number},
	{Name: "kits", Type: node.Array},
}

func (m *Manager) installVersionAction() {
	n, _ := m.node.CreateChild(VersionAction)
	n.SetSerializable(false)
	n.SetAction(&node.Action{
		Results:    versionColumns,
		ResultType: node.ResultTable,
		Handler:    m.readVersion,
	})
}

// readVersion returns one row: platform ID, scode flags and the installed
// kits as {name, checksum, version} maps.
func (m *Manager) readVersion(ctx context.Context, req *node.ActionRequest) error {
	client := m.Client()
	if client == nil {
		return fmt.Errorf("%w: %s", ErrNotConnected, m.name)
	}

	start := time.Now()
	v, err := client.ReadVersion(ctx)
	m.rec.Request(log.RequestEvent{Operation: log.OpReadVersion, Duration: time.Since(start)}, err)
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}

	kits := make([]node.Value, 0, len(v.Kits))
	for _, k := range v.Kits {
		kits = append(kits, node.NewMap(map[string]node.Value{
			"name":     node.NewString(k.Name),
			"checksum": node.NewInt(int64(k.Checksum)),
			"version":  node.NewString(k.Version),
		}))
	}
	req.Table.AddRow(
		node.NewString(v.PlatformID),
		node.NewInt(int64(v.ScodeFlags)),
		node.NewArray(kits...),
	)
	return nil
}
