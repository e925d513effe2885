// Package frame implements the curvilinear (road-aligned) coordinate
// system contract: invertible Cartesian <-> curvilinear vertex
// conversion, shape conversion with a vertex/whole-shape drop policy,
// and obstacle rasterization into the curvilinear frame.
//
// Constructing a curvilinear system from a reference path is an
// out-of-scope collaborator concern; this package only defines the
// contract and ships a straight-reference-path test double sufficient
// to drive the curvilinear tests.
package frame

import (
	"errors"
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"go.viam.com/reachplan/geometry"
	"go.viam.com/reachplan/logging"
)

// ErrOutsideProjectionDomain is returned when a Cartesian point has no
// image in the curvilinear frame's valid strip, or vice versa.
var ErrOutsideProjectionDomain = errors.New("frame: point outside projection domain")

// CoordinateSystem converts between Cartesian (x, y) and curvilinear
// (p_lon, p_lat) coordinates within a valid strip around a reference
// path. It is read-only and safe to share across worker-pool
// goroutines.
type CoordinateSystem interface {
	// ToCartesian maps a curvilinear point to Cartesian (x, y, 0).
	ToCartesian(pLon, pLat float64) (r3.Vector, error)
	// ToCurvilinear maps a Cartesian point to (p_lon, p_lat).
	ToCurvilinear(p r3.Vector) (pLon, pLat float64, err error)
}

// DropPolicy controls what ConvertPolygon does when a vertex conversion
// fails: either drop just the offending vertex, or give up on the
// whole shape.
type DropPolicy int

// Drop policies.
const (
	DropVertex DropPolicy = iota
	DropWholeShape
)

// ConvertPolygon converts every vertex of a Cartesian polygon to
// curvilinear coordinates (or the reverse, via toCvln's inverse
// semantics is the caller's choice of which direction `convert` runs).
// If any vertex fails and policy is DropWholeShape, the whole shape is
// dropped (nil, ErrOutsideProjectionDomain). If policy is
// DropVertex, failing vertices are omitted and the remaining ones are
// re-hulled; if fewer than 3 survive, the shape is dropped regardless of
// policy.
func ConvertPolygon(
	p *geometry.Polygon,
	convert func(r2.Point) (r2.Point, error),
	policy DropPolicy,
	logger logging.Logger,
) (*geometry.Polygon, error) {
	if p.IsEmpty() {
		return geometry.Empty(), nil
	}
	var converted []r2.Point
	var firstErr error
	for _, v := range p.Vertices() {
		cv, err := convert(v)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if policy == DropWholeShape {
				logger.Warnf("dropping shape: vertex conversion failed: %v", err)
				return nil, ErrOutsideProjectionDomain
			}
			logger.Warnf("dropping vertex: conversion failed: %v", err)
			continue
		}
		converted = append(converted, cv)
	}
	out, err := geometry.FromVertices(converted)
	if err != nil {
		return nil, ErrOutsideProjectionDomain
	}
	return out, nil
}

// StraightLineFrame is a CoordinateSystem for a straight reference path
// running along the Cartesian X axis, valid within +/- HalfWidth of it.
// It is a test double: constructing a curvilinear frame from an
// arbitrary reference path is an out-of-scope collaborator concern.
type StraightLineFrame struct {
	HalfWidth float64
}

// ToCartesian implements CoordinateSystem.
func (f StraightLineFrame) ToCartesian(pLon, pLat float64) (r3.Vector, error) {
	if math.Abs(pLat) > f.HalfWidth {
		return r3.Vector{}, ErrOutsideProjectionDomain
	}
	return r3.Vector{X: pLon, Y: pLat, Z: 0}, nil
}

// ToCurvilinear implements CoordinateSystem.
func (f StraightLineFrame) ToCurvilinear(p r3.Vector) (float64, float64, error) {
	if math.Abs(p.Y) > f.HalfWidth {
		return 0, 0, ErrOutsideProjectionDomain
	}
	return p.X, p.Y, nil
}
