// Command xipflash inspects and manipulates the TicKV storage window of an
// emulated RP2040 flash chip.
package main

import "github.com/sarchlab/xipflash/cmd/xipflash/cmd"

func main() {
	cmd.Execute()
}
