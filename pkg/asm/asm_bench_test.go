package asm

import "testing"

// smallProgram is a counter loop.
const smallProgram = `
    LD V0, 10
    LD V1, 0
loop:
    ADD V1, V0
    ADD V0, 0xFF
    SE V0, 0
    JP loop
halt:
    JP halt
`

// mediumProgram draws every hex digit across the screen using a subroutine.
const mediumProgram = `
    CLS
    LD V0, 0       ; digit
    LD V1, 1       ; x
    LD V2, 1       ; y
next:
    CALL draw_digit
    ADD V0, 1
    ADD V1, 5
    SE V1, 41
    JP check
    LD V1, 1
    ADD V2, 6
check:
    SE V0, 16
    JP next
wait:
    LD V3, K
    SKNP V3
    JP wait
    LD DT, V3
    LD ST, V3
    JP wait

draw_digit:
    LD F, V0
    DRW V1, V2, 5
    RET

table:
    .BYTE 0x01, 0x02, 0x04, 0x08
    .WORD 0x1234
`

func BenchmarkAssembleSmall(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, _, err := Assemble(smallProgram); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAssembleMedium(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, _, err := Assemble(mediumProgram); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDisassemble(b *testing.B) {
	rom, _, err := Assemble(mediumProgram)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Disassemble(rom)
	}
}
