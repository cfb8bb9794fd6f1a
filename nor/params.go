package nor

import "time"

// Params holds the timing of a flash part. Values are typical figures from
// the part's AC characteristics table.
type Params struct {
	Name string

	// PageProgram is the time to program one 256 byte page.
	PageProgram time.Duration

	// SectorErase is the time to erase one 4 KiB sector.
	SectorErase time.Duration

	// BlockErase is the time to erase one 64 KiB block.
	BlockErase time.Duration
}

// Parts found on RP2040 boards.
var (
	// W25Q16JV is the 2 MiB part on the Raspberry Pi Pico.
	W25Q16JV = Params{
		Name:        "Winbond W25Q16JV",
		PageProgram: 400 * time.Microsecond,
		SectorErase: 45 * time.Millisecond,
		BlockErase:  150 * time.Millisecond,
	}

	// W25Q128JV is the 16 MiB part used on larger boards.
	W25Q128JV = Params{
		Name:        "Winbond W25Q128JV",
		PageProgram: 700 * time.Microsecond,
		SectorErase: 45 * time.Millisecond,
		BlockErase:  150 * time.Millisecond,
	}

	// AT25SF128A is the 16 MiB Adesto part some boards ship with.
	AT25SF128A = Params{
		Name:        "Adesto AT25SF128A",
		PageProgram: 400 * time.Microsecond,
		SectorErase: 65 * time.Millisecond,
		BlockErase:  300 * time.Millisecond,
	}
)
