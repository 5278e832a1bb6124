// Package interactive provides the interactive command-line interface
// for soxlink.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/soxlink/soxlink-go/pkg/connection"
	"github.com/soxlink/soxlink-go/pkg/discovery"
	"github.com/soxlink/soxlink-go/pkg/mirror"
	"github.com/soxlink/soxlink-go/pkg/node"
	"github.com/soxlink/soxlink-go/pkg/registry"
	"github.com/soxlink/soxlink-go/pkg/service"
	"github.com/soxlink/soxlink-go/pkg/sox"
)

var errUsage = errors.New("usage")

// Console handles interactive mode for soxlink.
type Console struct {
	svc *service.BridgeService
	rl  *readline.Instance

	// mu serializes output and guards watches.
	mu      sync.Mutex
	out     io.Writer
	watches map[string]node.SubscriptionID
}

// New creates a console reading from the terminal.
func New(svc *service.BridgeService) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "soxlink> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	c := newConsole(svc, rl.Stdout())
	c.rl = rl
	return c, nil
}

func newConsole(svc *service.BridgeService, out io.Writer) *Console {
	return &Console{
		svc:     svc,
		out:     out,
		watches: make(map[string]node.SubscriptionID),
	}
}

func completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("list"),
		readline.PcItem("tree"),
		readline.PcItem("get"),
		readline.PcItem("set"),
		readline.PcItem("invoke"),
		readline.PcItem("watch"),
		readline.PcItem("unwatch"),
		readline.PcItem("add"),
		readline.PcItem("remove"),
		readline.PcItem("version"),
		readline.PcItem("discover"),
		readline.PcItem("quit"),
	)
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			c.printf("Exiting...\n")
			cancel()
			return
		}
		if !c.Execute(ctx, line) {
			cancel()
			return
		}
	}
}

// Execute runs one command line. It returns false when the console should
// exit.
func (c *Console) Execute(ctx context.Context, line string) bool {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch cmd {
	case "help", "?":
		c.printHelp()
	case "list", "ls":
		c.cmdList()
	case "tree", "t":
		err = c.cmdTree(args)
	case "get", "g":
		err = c.cmdGet(args)
	case "set", "s":
		err = c.cmdSet(ctx, args)
	case "invoke", "i":
		err = c.cmdInvoke(ctx, args)
	case "watch", "w":
		err = c.cmdWatch(args)
	case "unwatch":
		err = c.cmdUnwatch(args)
	case "add":
		err = c.cmdAdd(ctx, args)
	case "remove", "rm":
		err = c.cmdRemove(args)
	case "version", "v":
		err = c.cmdVersion(ctx, args)
	case "discover":
		err = c.cmdDiscover(ctx)
	case "quit", "exit", "q":
		c.printf("Exiting...\n")
		return false
	default:
		c.printf("Unknown command: %s (type 'help' for commands)\n", cmd)
	}

	if err != nil && !errors.Is(err, errUsage) {
		c.printf("Error: %v\n", err)
	}
	return true
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) usage(s string) error {
	c.printf("Usage: %s\n", s)
	return errUsage
}

func (c *Console) printHelp() {
	c.printf(`
soxlink Commands:
  Endpoints:
    list                                   - List endpoints and their state
    add <name> <url> <port> <user> [pass]  - Add and connect an endpoint
    remove <name>                          - Close and remove an endpoint
    version <name>                         - Show platform and kit versions
    discover                               - Browse the LAN for SOX devices

  Tree:
    tree [path] [depth]                    - Print the node tree
    get <path>                             - Show a node's value
    set <path> <value>                     - Write a value
    invoke <path> [value | name=value...]  - Invoke an action
    watch <path>                           - Print value changes
    unwatch <path>                         - Stop printing value changes

  General:
    help                                   - Show this help
    quit                                   - Exit

  Path Format:
    /<endpoint>/app/<component>.../<slot> - e.g., /plant1/app/pump/speed
`)
}

func (c *Console) cmdList() {
	eps := c.svc.Registry().Endpoints()
	if len(eps) == 0 {
		c.printf("No endpoints configured\n")
		return
	}
	c.printf("\nEndpoints (%d):\n", len(eps))
	for _, m := range eps {
		url, _ := m.Node().RoConfig(connection.ConfigURL)
		port, _ := m.Node().RoConfig(connection.ConfigPort)
		line := fmt.Sprintf("  %-16s %-20s %s", m.Name(), url.String()+":"+port.String(), m.State())
		if id := m.ConnectionID(); id != "" {
			line += "  conn:" + shorten(id)
		}
		c.printf("%s\n", line)
	}
}

func shorten(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (c *Console) cmdTree(args []string) error {
	path := "/"
	depth := -1
	if len(args) > 0 {
		path = args[0]
	}
	if len(args) > 1 {
		d, err := strconv.Atoi(args[1])
		if err != nil || d < 0 {
			return c.usage("tree [path] [depth]")
		}
		depth = d
	}
	n, err := c.svc.Tree().Get(path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	printNode(c.out, n, 0, depth)
	return nil
}

func printNode(w io.Writer, n *node.Node, indent, depth int) {
	name := n.Name()
	if name == "" {
		name = "/"
	}
	fmt.Fprintf(w, "%s%s%s\n", strings.Repeat("  ", indent), name, describe(n))
	if depth == 0 {
		return
	}
	for _, child := range n.Children() {
		printNode(w, child, indent+1, depth-1)
	}
}

func describe(n *node.Node) string {
	switch {
	case n.Action() != nil:
		return " (action)"
	case n.HasValue():
		s := " = " + n.Value().String()
		if n.Writable() != node.WriteNever {
			s += " [rw]"
		}
		return s
	default:
		return ""
	}
}

func (c *Console) cmdGet(args []string) error {
	if len(args) != 1 {
		return c.usage("get <path>")
	}
	n, err := c.svc.Tree().Get(args[0])
	if err != nil {
		return err
	}
	c.printf("%s = %s\n", n.Path(), n.Value())
	c.printf("  Type: %s  Writable: %s\n", n.ValueType(), n.Writable())
	return nil
}

func (c *Console) cmdSet(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return c.usage("set <path> <value>")
	}
	tree := c.svc.Tree()
	n, err := tree.Get(args[0])
	if err != nil {
		return err
	}
	v, err := node.ParseValue(n.ValueType(), strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	if err := n.Write(ctx, v); err != nil {
		return err
	}
	c.printf("%s = %s\n", n.Path(), n.Value())
	return nil
}

func (c *Console) cmdInvoke(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return c.usage("invoke <path> [value | name=value...]")
	}
	n, err := c.svc.Tree().Get(args[0])
	if err != nil {
		return err
	}
	a := n.Action()
	if a == nil {
		return fmt.Errorf("%w: %s", node.ErrNotAction, n.Path())
	}
	params, err := parseParams(a, args[1:])
	if err != nil {
		return err
	}
	table, err := c.svc.Tree().Invoke(ctx, n.Path(), params)
	if err != nil {
		return err
	}
	c.printTable(table)
	return nil
}

// parseParams reads name=value pairs, or a single bare value for an
// action's first parameter.
func parseParams(a *node.Action, args []string) (map[string]node.Value, error) {
	params := make(map[string]node.Value)
	if len(args) == 0 {
		return params, nil
	}
	types := make(map[string]node.ValueType, len(a.Params))
	for _, p := range a.Params {
		types[p.Name] = p.Type
	}

	if !strings.Contains(args[0], "=") {
		if len(a.Params) == 0 {
			return nil, fmt.Errorf("action takes no parameters")
		}
		name := a.Params[0].Name
		if _, ok := types[mirror.ValueParam]; ok {
			name = mirror.ValueParam
		}
		v, err := node.ParseValue(types[name], strings.Join(args, " "))
		if err != nil {
			return nil, err
		}
		params[name] = v
		return params, nil
	}

	for _, arg := range args {
		name, text, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("expected name=value, got %q", arg)
		}
		t, ok := types[name]
		if !ok {
			return nil, fmt.Errorf("unknown parameter %q", name)
		}
		v, err := node.ParseValue(t, text)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		params[name] = v
	}
	return params, nil
}

func (c *Console) printTable(t *node.Table) {
	if t == nil || len(t.Columns) == 0 {
		c.printf("OK\n")
		return
	}
	if len(t.Rows) == 0 {
		c.printf("(no rows)\n")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, row := range t.Rows {
		if len(t.Rows) > 1 {
			fmt.Fprintf(c.out, "  %d.", i+1)
		}
		for j, col := range t.Columns {
			fmt.Fprintf(c.out, " %s=%s", col.Name, row[j])
		}
		fmt.Fprintln(c.out)
	}
}

func (c *Console) cmdWatch(args []string) error {
	if len(args) != 1 {
		return c.usage("watch <path>")
	}
	tree := c.svc.Tree()
	n, err := tree.Get(args[0])
	if err != nil {
		return err
	}
	path := n.Path()

	c.mu.Lock()
	_, dup := c.watches[path]
	c.mu.Unlock()
	if dup {
		return fmt.Errorf("already watching %s", path)
	}

	id, err := tree.Subscribe(path, func(u node.Update) {
		c.printf("[WATCH] %s = %s\n", u.Node.Path(), u.Value)
	})
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.watches[path] = id
	c.mu.Unlock()
	return nil
}

func (c *Console) cmdUnwatch(args []string) error {
	if len(args) != 1 {
		return c.usage("unwatch <path>")
	}
	path := args[0]
	if n, err := c.svc.Tree().Get(path); err == nil {
		path = n.Path()
	}

	c.mu.Lock()
	id, ok := c.watches[path]
	delete(c.watches, path)
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("not watching %s", path)
	}
	c.svc.Tree().Subscriptions().Unsubscribe(id)
	return nil
}

// Watching returns the watched paths, sorted.
func (c *Console) Watching() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.watches))
	for p := range c.watches {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (c *Console) cmdAdd(ctx context.Context, args []string) error {
	if len(args) < 4 || len(args) > 5 {
		return c.usage("add <name> <url> <port> <user> [pass]")
	}
	port, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("%w: port %q", registry.ErrInvalidEndpoint, args[2])
	}
	ep := registry.Endpoint{Name: args[0], URL: args[1], Port: port, Username: args[3]}
	if len(args) == 5 {
		ep.Password = args[4]
	}
	if err := c.svc.Registry().Add(ctx, ep); err != nil {
		return err
	}
	c.printf("Endpoint %s connected\n", ep.Name)
	return nil
}

func (c *Console) cmdRemove(args []string) error {
	if len(args) != 1 {
		return c.usage("remove <name>")
	}
	name := strings.TrimPrefix(args[0], "/")
	if err := c.svc.Registry().Remove(name); err != nil {
		return err
	}
	c.printf("Endpoint %s removed\n", name)
	return nil
}

func (c *Console) cmdVersion(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return c.usage("version <name>")
	}
	name := strings.TrimPrefix(args[0], "/")
	if _, ok := c.svc.Registry().Endpoint(name); !ok {
		return fmt.Errorf("%w: %s", registry.ErrEndpointNotFound, name)
	}
	table, err := c.svc.Tree().Invoke(ctx, "/"+name+"/"+connection.VersionAction, nil)
	if err != nil {
		return err
	}
	for _, row := range table.Rows {
		c.printf("Platform: %s\n", row[0])
		c.printf("Scode flags: %s\n", row[1])
		kits := row[2].Array()
		c.printf("Kits (%d):\n", len(kits))
		for _, k := range kits {
			m := k.Map()
			c.printf("  %-16s %-12s checksum %s\n", m["name"], m["version"], m["checksum"])
		}
	}
	return nil
}

func (c *Console) cmdDiscover(ctx context.Context) error {
	if c.svc.Tree().Root().Child(discovery.DiscoverAction) == nil {
		return fmt.Errorf("discovery disabled (start with -discover)")
	}
	c.printf("Browsing for %s devices...\n", discovery.ServiceType)
	table, err := c.svc.Tree().Invoke(ctx, "/"+discovery.DiscoverAction, nil)
	if err != nil {
		return err
	}
	if len(table.Rows) == 0 {
		c.printf("No devices found\n")
		return nil
	}
	c.printf("Found %d device(s):\n", len(table.Rows))
	for i, row := range table.Rows {
		c.printf("  %d. %s (%s:%s)\n", i+1, row[0], row[1], row[2])
	}
	c.printf("Add one with: add <name> <host> %d <user> [pass]\n", sox.DefaultPort)
	return nil
}
