// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import "github.com/ohos-build/hb/cmd"

func main() {
	cmd.Execute()
}
