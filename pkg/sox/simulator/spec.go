package simulator

import (
	"fmt"
	"os"
	"strings"

	"github.com/soxlink/soxlink-go/pkg/sox"
	"gopkg.in/yaml.v3"
)

// DeviceSpec describes a simulated device in YAML.
type DeviceSpec struct {
	Name     string          `yaml:"name"`
	Address  string          `yaml:"address"`
	Port     int             `yaml:"port"`
	Username string          `yaml:"username,omitempty"`
	Password string          `yaml:"password,omitempty"`
	Platform string          `yaml:"platform,omitempty"`
	Flags    int             `yaml:"scodeFlags,omitempty"`
	Kits     []KitSpec       `yaml:"kits,omitempty"`
	App      ComponentSpec   `yaml:"app"`
	Types    map[string]Type `yaml:"types,omitempty"`
}

// KitSpec describes one installed kit.
type KitSpec struct {
	Name     string `yaml:"name"`
	Checksum int32  `yaml:"checksum"`
	Version  string `yaml:"version"`
}

// Type is a reusable list of slots, referenced by ComponentSpec.Type.
type Type struct {
	Slots []SlotSpec `yaml:"slots"`
}

// ComponentSpec describes one component and its children.
type ComponentSpec struct {
	Name     string            `yaml:"name"`
	Type     string            `yaml:"type,omitempty"`
	Slots    []SlotSpec        `yaml:"slots,omitempty"`
	Values   map[string]string `yaml:"values,omitempty"`
	Children []ComponentSpec   `yaml:"children,omitempty"`
}

// SlotSpec describes one slot. Value is the slot's text form.
type SlotSpec struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Action   bool   `yaml:"action,omitempty"`
	ReadOnly bool   `yaml:"readonly,omitempty"`
	Range    string `yaml:"range,omitempty"`
	Value    string `yaml:"value,omitempty"`
}

// LoadSpecs reads a YAML document holding a list of device specs under
// the "devices" key.
func LoadSpecs(path string) ([]DeviceSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Devices []DeviceSpec `yaml:"devices"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc.Devices, nil
}

// Build creates the Device described by s.
func (s DeviceSpec) Build() (*Device, error) {
	b := &specBuilder{types: s.Types}
	appName := s.App.Name
	if appName == "" {
		appName = "app"
	}
	root, err := b.component(s.App, appName)
	if err != nil {
		return nil, fmt.Errorf("device %s: %w", s.Name, err)
	}
	d := NewDevice(s.Name, root)
	d.SetCredentials(s.Username, s.Password)

	v := sox.VersionInfo{PlatformID: s.Platform, ScodeFlags: s.Flags}
	if v.PlatformID == "" {
		v.PlatformID = "soxlink-sim"
	}
	for _, k := range s.Kits {
		v.Kits = append(v.Kits, sox.KitVersion{Name: k.Name, Checksum: k.Checksum, Version: k.Version})
	}
	d.SetVersion(v)
	return d, nil
}

// Endpoint returns the address and port the device listens on, defaulting
// the port.
func (s DeviceSpec) Endpoint() (string, int) {
	port := s.Port
	if port == 0 {
		port = sox.DefaultPort
	}
	return s.Address, port
}

type specBuilder struct {
	types  map[string]Type
	nextID uint16
}

func (b *specBuilder) component(cs ComponentSpec, name string) (*sox.Component, error) {
	slotSpecs := cs.Slots
	if cs.Type != "" {
		if t, ok := b.types[cs.Type]; ok {
			slotSpecs = append(append([]SlotSpec(nil), t.Slots...), cs.Slots...)
		}
	}

	typ := &sox.Type{QName: cs.Type}
	values := make(map[string]sox.Value)
	for i, ss := range slotSpecs {
		id, ok := sox.ParseTypeID(strings.ToLower(ss.Type))
		if !ok {
			return nil, fmt.Errorf("slot %s.%s: unknown type %q", name, ss.Name, ss.Type)
		}
		slot := sox.Slot{ID: uint8(i), Name: ss.Name, Type: id, Facets: sox.Facets{}}
		if ss.Action {
			slot.Kind = sox.SlotAction
		}
		if ss.ReadOnly {
			slot.Facets["readonly"] = true
		}
		if ss.Range != "" {
			slot.Facets["range"] = ss.Range
		}
		typ.Slots = append(typ.Slots, slot)

		text := ss.Value
		if override, ok := cs.Values[ss.Name]; ok {
			text = override
		}
		if text != "" && !slot.IsAction() {
			v, err := sox.ParseValue(id, text)
			if err != nil {
				return nil, fmt.Errorf("slot %s.%s: %w", name, ss.Name, err)
			}
			values[ss.Name] = v
		}
	}

	c := sox.NewComponent(b.nextID, name, typ)
	b.nextID++
	for k, v := range values {
		c.Set(k, v)
	}
	for _, ch := range cs.Children {
		child, err := b.component(ch, ch.Name)
		if err != nil {
			return nil, err
		}
		c.AddChild(child)
	}
	return c, nil
}
