package render

import (
	"fmt"
	"strings"
)

// builtinPrelude renders typedefs for the decompiler's synthetic types, which
// no real C toolchain knows about. Sizes 9..16 have no exact integer C type,
// so they approximate to the widest one available.
func builtinPrelude(cpp bool) string {
	var b strings.Builder

	for n := 9; n <= 16; n++ {
		fmt.Fprintf(&b, "typedef unsigned long long unkbyte%d;\n", n)
	}
	b.WriteString("\n")
	for n := 9; n <= 16; n++ {
		fmt.Fprintf(&b, "typedef unsigned long long unkuint%d;\n", n)
	}
	b.WriteString("\n")
	for n := 9; n <= 16; n++ {
		fmt.Fprintf(&b, "typedef long long unkint%d;\n", n)
	}
	b.WriteString("\n")
	for _, n := range []int{1, 2, 3} {
		fmt.Fprintf(&b, "typedef float unkfloat%d;\n", n)
	}
	for _, n := range []int{5, 6, 7} {
		fmt.Fprintf(&b, "typedef double unkfloat%d;\n", n)
	}
	b.WriteString("typedef long double unkfloat9;\n")
	for n := 11; n <= 16; n++ {
		fmt.Fprintf(&b, "typedef long double unkfloat%d;\n", n)
	}
	b.WriteString("\n")
	b.WriteString("typedef void BADSPACEBASE;\n")
	b.WriteString("typedef void code;\n")
	b.WriteString("\n")

	b.WriteString(comment("C99 lacks bool, define it as byte for C-only output", cpp))
	b.WriteString("\n")
	b.WriteString("#if !defined(__cplusplus) && !defined(NO_BOOL)\n")
	b.WriteString("typedef unsigned char bool;\n")
	b.WriteString("#endif\n")
	b.WriteString("\n")
	b.WriteString("typedef unsigned int uint;\n")

	return b.String()
}
