package discovery

import (
	"context"
	"fmt"

	"github.com/soxlink/soxlink-go/pkg/node"
)

// DiscoverAction is the name of the discover action on the root node.
const DiscoverAction = "discover"

var discoverColumns = []node.Column{
	{Name: "name", Type: node.String},
	{Name: "host", Type: node.String},
	{Name: "port", Type: node.Number},
}

// InstallAction adds the discover action below root. Each row is one
// service: its instance name, dial address and port.
func InstallAction(root *node.Node, b *Browser) *node.Node {
	n, _ := root.CreateChild(DiscoverAction)
	n.SetSerializable(false)
	n.SetAction(&node.Action{
		Results:    discoverColumns,
		ResultType: node.ResultTable,
		Handler: func(ctx context.Context, req *node.ActionRequest) error {
			services, err := b.Find(ctx)
			if err != nil {
				return fmt.Errorf("discover: %w", err)
			}
			for _, svc := range services {
				req.Table.AddRow(
					node.NewString(svc.Instance),
					node.NewString(svc.Address()),
					node.NewInt(int64(svc.Port)),
				)
			}
			return nil
		},
	})
	return n
}
