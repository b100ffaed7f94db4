/*
 * Copyright 2021. Go-Sharding Author All Rights Reserved.
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 *
 *  File author: Anders Xiao
 */

package routing

import (
	"fmt"
	"strings"

	"github.com/endink/go-sharding-core/rule"
)

type EngineType int

const (
	EngineStandard EngineType = iota
	EngineCartesian
	EngineTableBroadcast
	EngineDatabaseBroadcast
	EngineUnicast
	EngineDefaultDataSource
)

func (e EngineType) String() string {
	switch e {
	case EngineStandard:
		return "standard"
	case EngineCartesian:
		return "cartesian"
	case EngineTableBroadcast:
		return "table-broadcast"
	case EngineDatabaseBroadcast:
		return "database-broadcast"
	case EngineUnicast:
		return "unicast"
	case EngineDefaultDataSource:
		return "default-data-source"
	}
	return fmt.Sprintf("engine(%d)", int(e))
}

type TableUnit struct {
	LogicTable  string
	ActualTable string
}

// RoutingUnit is one physical execution target.
type RoutingUnit struct {
	DataSourceName string
	TableUnits     []TableUnit
}

func NewRoutingUnit(dataSource string, tables ...TableUnit) *RoutingUnit {
	return &RoutingUnit{DataSourceName: dataSource, TableUnits: tables}
}

// ActualTable returns the actual table the logic table is mapped to in this unit.
func (u *RoutingUnit) ActualTable(logicTable string) (string, bool) {
	for _, t := range u.TableUnits {
		if strings.EqualFold(t.LogicTable, logicTable) {
			return t.ActualTable, true
		}
	}
	return "", false
}

// ContainsDataNode reports whether the unit targets the actual table of the data node.
func (u *RoutingUnit) ContainsDataNode(node rule.DataNode) bool {
	if !strings.EqualFold(u.DataSourceName, node.DataSourceName) {
		return false
	}
	for _, t := range u.TableUnits {
		if strings.EqualFold(t.ActualTable, node.TableName) {
			return true
		}
	}
	return false
}

func (u *RoutingUnit) key() string {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(u.DataSourceName))
	for _, t := range u.TableUnits {
		sb.WriteString("|")
		sb.WriteString(strings.ToLower(t.LogicTable))
		sb.WriteString("=")
		sb.WriteString(strings.ToLower(t.ActualTable))
	}
	return sb.String()
}

func (u *RoutingUnit) String() string {
	parts := make([]string, len(u.TableUnits))
	for i, t := range u.TableUnits {
		parts[i] = t.LogicTable + "->" + t.ActualTable
	}
	return fmt.Sprintf("%s[%s]", u.DataSourceName, strings.Join(parts, ", "))
}

// RoutingResult is the ordered and deduplicated set of routing units of one statement.
type RoutingResult struct {
	Units  []*RoutingUnit
	Engine EngineType
	// ConditionNodes holds, for an INSERT, the data nodes each sharding condition (value group) is routed to.
	ConditionNodes [][]rule.DataNode

	keys map[string]struct{}
}

func newRoutingResult(engine EngineType) *RoutingResult {
	return &RoutingResult{Engine: engine, keys: make(map[string]struct{})}
}

// Add appends the unit unless an equal unit is present.
func (r *RoutingResult) Add(unit *RoutingUnit) bool {
	if r.keys == nil {
		r.keys = make(map[string]struct{}, len(r.Units))
		for _, u := range r.Units {
			r.keys[u.key()] = struct{}{}
		}
	}
	k := unit.key()
	if _, ok := r.keys[k]; ok {
		return false
	}
	r.keys[k] = struct{}{}
	r.Units = append(r.Units, unit)
	return true
}

func (r *RoutingResult) IsSingleUnit() bool {
	return len(r.Units) == 1
}

// DataSourceNames returns the data sources of the units in order of first appearance.
func (r *RoutingResult) DataSourceNames() []string {
	var names []string
	seen := make(map[string]struct{})
	for _, u := range r.Units {
		k := strings.ToLower(u.DataSourceName)
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			names = append(names, u.DataSourceName)
		}
	}
	return names
}

func (r *RoutingResult) String() string {
	parts := make([]string, len(r.Units))
	for i, u := range r.Units {
		parts[i] = u.String()
	}
	return fmt.Sprintf("%s: %s", r.Engine, strings.Join(parts, "; "))
}

// Hints are route values supplied by the caller for hint strategies.
type Hints struct {
	DatabaseValues []interface{}
	TableValues    []interface{}
}
