package strtab_test

import (
	"fmt"

	"github.com/relocore/cfgdata/strtab"
)

func Example() {
	buf := make([]byte, 1024)
	if err := strtab.Init(buf, 10); err != nil {
		panic(err)
	}

	sym, err := strtab.ToSymbol(buf, "niklas")
	if err != nil {
		panic(err)
	}

	fmt.Println(strtab.ToString(buf, sym))
	// Output: niklas
}
