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

package statement

import "fmt"

type Kind int

const (
	KindSelect Kind = iota
	KindInsert
	KindUpdate
	KindDelete
	KindDDL
	KindDCL
	// KindDAL covers SHOW, SET, USE and similar statements.
	KindDAL
	KindTCL
)

func (k Kind) String() string {
	switch k {
	case KindSelect:
		return "select"
	case KindInsert:
		return "insert"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	case KindDDL:
		return "ddl"
	case KindDCL:
		return "dcl"
	case KindDAL:
		return "dal"
	case KindTCL:
		return "tcl"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) IsDML() bool {
	return k == KindSelect || k == KindInsert || k == KindUpdate || k == KindDelete
}

// IsWrite reports whether a DML statement changes data.
func (k Kind) IsWrite() bool {
	return k == KindInsert || k == KindUpdate || k == KindDelete
}
