// Copyright 2019 The xyrange Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
xql package contains parser and executor of the query language for parsed
datasets. The following statements are supported:

	SELECT [FORMAT <format string>] [WHERE <range expression>] [OFFSET <number>] [LIMIT <number>]
	SHOW RANGES [WHERE <range expression>] [OFFSET <number>] [LIMIT <number>]
	SHOW META

SELECT prints points of the ranges matching the expression, using the format
string (see model.NewPointFormatter). OFFSET and LIMIT are applied to the
points. SHOW RANGES prints one summary line per range, OFFSET and LIMIT are
applied to the ranges then. SHOW META prints the file metadata.

The range expression is built of conditions joined by AND, OR, NOT and
parentheses. A condition compares an operand with a value:

	points, index, xstart, xstep, xend	- numeric operands, =, !=, <, >, <=, >=
	meta:<key>	- the range metadata value, the same operations as above
			  compare strings, plus LIKE (shell pattern), CONTAINS,
			  PREFIX and SUFFIX

Example:

	SELECT FORMAT '{x:%.2f} {y}\n' WHERE meta:DRIVE = COUPLED AND points > 100 LIMIT 1000
*/
package xql
