// Package sox defines the device side of the bridge: the remote component
// model of a Sedona SOX device (components, slots, typed values, facets) and
// the Client and Dialer contracts a SOX transport implements.
//
// The wire protocol itself lives outside this module. Package
// sox/simulator provides an in-memory device for tests and demo runs.
package sox
