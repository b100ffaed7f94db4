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

package rule

import (
	"fmt"
	"strings"

	"github.com/endink/go-sharding-core/core"
	"github.com/endink/go-sharding-core/core/script"
	"github.com/pingcap/errors"
)

// DataNode is one physical table, the smallest unit of sharding.
type DataNode struct {
	DataSourceName string
	TableName      string
}

func NewDataNode(dataSource string, table string) DataNode {
	return DataNode{DataSourceName: dataSource, TableName: table}
}

// ParseDataNode parses text like 'ds_0.t_order_0'.
func ParseDataNode(text string) (DataNode, error) {
	segments := strings.Split(strings.TrimSpace(text), ".")
	if len(segments) != 2 || strings.TrimSpace(segments[0]) == "" || strings.TrimSpace(segments[1]) == "" {
		return DataNode{}, errors.Annotatef(core.NewConfigurationError("invalid data node format"), "'%s' should be '<data source>.<table>'", text)
	}
	return DataNode{
		DataSourceName: strings.TrimSpace(segments[0]),
		TableName:      strings.TrimSpace(segments[1]),
	}, nil
}

// ParseDataNodes expands an inline expression into data nodes, e.g. 'ds_${0..1}.t_order_${0..1}'.
func ParseDataNodes(expression string) ([]DataNode, error) {
	list, err := script.FlatInline(expression)
	if err != nil {
		return nil, errors.Annotatef(core.NewConfigurationError(err.Error()), "parse data nodes '%s'", expression)
	}
	nodes := make([]DataNode, 0, len(list))
	for _, text := range list {
		n, err := ParseDataNode(text)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (d DataNode) String() string {
	return fmt.Sprintf("%s.%s", d.DataSourceName, d.TableName)
}

func (d DataNode) Equals(other DataNode) bool {
	return strings.EqualFold(d.DataSourceName, other.DataSourceName) && strings.EqualFold(d.TableName, other.TableName)
}
