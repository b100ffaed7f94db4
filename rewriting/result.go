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

package rewriting

import (
	"fmt"
)

// SQLUnit is the sql text and bind values of one physical execution.
type SQLUnit struct {
	SQL        string
	Parameters []interface{}
}

func (u *SQLUnit) String() string {
	if len(u.Parameters) == 0 {
		return u.SQL
	}
	return fmt.Sprintf("%s %v", u.SQL, u.Parameters)
}

// ExecutionUnit is a SQLUnit bound to the data source it runs on.
type ExecutionUnit struct {
	DataSourceName string
	SQLUnit        *SQLUnit
}

func (u *ExecutionUnit) String() string {
	return u.DataSourceName + ": " + u.SQLUnit.String()
}
