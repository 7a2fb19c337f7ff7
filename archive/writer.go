package archive

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/blakesmith/ar"

	"ember/report"
)

// NewMember describes one member of an archive being written: either a file
// taken from disk or a member carried over from a source archive, paired
// with the logical name it should have in the new archive.
type NewMember struct {
	Name string

	// Path names the file to read the member contents from.  When empty,
	// Child supplies the contents instead.
	Path  string
	Child *Member
}

// memberImage is a fully resolved member ready for layout.
type memberImage struct {
	name string
	data []byte

	// The on-disk name field, once layout decides it.
	diskName string

	// The file offset of the member header, once layout decides it.
	offset uint32

	// Defined global symbols of the member, when a symbol table was
	// requested.
	symbols []string
}

// Write assembles a new archive at dst from the given members, in order.
// When writeSymtab is set, a symbol table over the members' defined symbols
// is prepended; the table is written even when no member defines any
// symbols.  Failure sets the last error slot.
func Write(dst string, members []NewMember, writeSymtab bool, kind Kind) error {
	images := make([]*memberImage, len(members))
	for i, m := range members {
		img := &memberImage{name: m.Name}

		if m.Path != "" {
			data, err := os.ReadFile(m.Path)
			if err != nil {
				report.SetLastError(err.Error())
				return err
			}

			img.data = data
		} else if m.Child != nil {
			img.data = m.Child.Data()
		} else {
			err := fmt.Errorf("archive member `%s` has no source", m.Name)
			report.SetLastError(err.Error())
			return err
		}

		if writeSymtab {
			img.symbols = definedSymbols(img.data)
		}

		images[i] = img
	}

	var image []byte
	switch kind {
	case KindGNU:
		image = layoutGNU(images, writeSymtab)
	case KindBSD:
		image = layoutBSD(images, writeSymtab)
	default:
		err := fmt.Errorf("unknown archive kind: %d", kind)
		report.SetLastError(err.Error())
		return err
	}

	if err := os.WriteFile(dst, image, 0o644); err != nil {
		report.SetLastError(err.Error())
		return err
	}

	return nil
}

// definedSymbols extracts the defined global symbols of an ELF object.
// Non-ELF members contribute no symbols.
func definedSymbols(data []byte) []string {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	defer f.Close()

	syms, err := f.Symbols()
	if err != nil {
		return nil
	}

	var defined []string
	for _, sym := range syms {
		if sym.Section == elf.SHN_UNDEF || sym.Name == "" {
			continue
		}

		switch elf.ST_BIND(sym.Info) {
		case elf.STB_GLOBAL, elf.STB_WEAK:
			defined = append(defined, sym.Name)
		}
	}

	return defined
}

// -----------------------------------------------------------------------------

const (
	headerSize = 60

	// The widest member name that still fits the fixed header name field
	// with its terminator.
	maxShortNameGNU = 15
)

// padded returns size rounded up to the archive's two-byte alignment.
func padded(size int) int {
	return size + size%2
}

// layoutGNU lays out a GNU flavor archive: an optional `/` symbol table,
// a `//` long name table when any member name overflows the header field,
// then the members in order.
func layoutGNU(images []*memberImage, writeSymtab bool) []byte {
	// Long names move into the name table; short names get a `/`
	// terminator in the header field.
	var nameTable bytes.Buffer
	for _, img := range images {
		if len(img.name) > maxShortNameGNU {
			img.diskName = fmt.Sprintf("/%d", nameTable.Len())
			nameTable.WriteString(img.name)
			nameTable.WriteString("/\n")
		} else {
			img.diskName = img.name + "/"
		}
	}

	// The symbol table size is independent of member offsets, so offsets
	// can be assigned in a single pass once its size is known.
	var symtabSize int
	if writeSymtab {
		symtabSize = 4
		for _, img := range images {
			for _, sym := range img.symbols {
				symtabSize += 4 + len(sym) + 1
			}
		}
	}

	offset := len(archiveMagic)
	if writeSymtab {
		offset += headerSize + padded(symtabSize)
	}
	if nameTable.Len() > 0 {
		offset += headerSize + padded(nameTable.Len())
	}

	for _, img := range images {
		img.offset = uint32(offset)
		offset += headerSize + padded(len(img.data))
	}

	var buf bytes.Buffer
	w := ar.NewWriter(&buf)
	w.WriteGlobalHeader()

	if writeSymtab {
		var symtab bytes.Buffer
		var nsyms uint32
		for _, img := range images {
			nsyms += uint32(len(img.symbols))
		}

		binary.Write(&symtab, binary.BigEndian, nsyms)
		for _, img := range images {
			for range img.symbols {
				binary.Write(&symtab, binary.BigEndian, img.offset)
			}
		}
		for _, img := range images {
			for _, sym := range img.symbols {
				symtab.WriteString(sym)
				symtab.WriteByte(0)
			}
		}

		writeMember(&buf, w, "/", symtab.Bytes())
	}

	if nameTable.Len() > 0 {
		writeMember(&buf, w, "//", nameTable.Bytes())
	}

	for _, img := range images {
		writeMember(&buf, w, img.diskName, img.data)
	}

	return buf.Bytes()
}

// layoutBSD lays out a BSD flavor archive: an optional `__.SYMDEF` ranlib
// table, then the members with long names stored inline ahead of their
// data.
func layoutBSD(images []*memberImage, writeSymtab bool) []byte {
	// Inline long names count toward the member size, so resolve them
	// before assigning offsets.
	bodies := make([][]byte, len(images))
	for i, img := range images {
		if len(img.name) > maxShortNameGNU {
			img.diskName = fmt.Sprintf("#1/%d", len(img.name))
			bodies[i] = append([]byte(img.name), img.data...)
		} else {
			img.diskName = img.name
			bodies[i] = img.data
		}
	}

	var symtabSize int
	if writeSymtab {
		symtabSize = 8
		for _, img := range images {
			for _, sym := range img.symbols {
				symtabSize += 8 + len(sym) + 1
			}
		}
	}

	offset := len(archiveMagic)
	if writeSymtab {
		offset += headerSize + padded(symtabSize)
	}

	for i, img := range images {
		img.offset = uint32(offset)
		offset += headerSize + padded(len(bodies[i]))
	}

	var buf bytes.Buffer
	w := ar.NewWriter(&buf)
	w.WriteGlobalHeader()

	if writeSymtab {
		// The ranlib table: pairs of string table offset and member
		// offset, then the string table itself.
		var pairs, strtab bytes.Buffer
		for _, img := range images {
			for _, sym := range img.symbols {
				binary.Write(&pairs, binary.LittleEndian, uint32(strtab.Len()))
				binary.Write(&pairs, binary.LittleEndian, img.offset)
				strtab.WriteString(sym)
				strtab.WriteByte(0)
			}
		}

		var symtab bytes.Buffer
		binary.Write(&symtab, binary.LittleEndian, uint32(pairs.Len()))
		symtab.Write(pairs.Bytes())
		binary.Write(&symtab, binary.LittleEndian, uint32(strtab.Len()))
		symtab.Write(strtab.Bytes())

		writeMember(&buf, w, "__.SYMDEF", symtab.Bytes())
	}

	for i, img := range images {
		writeMember(&buf, w, img.diskName, bodies[i])
	}

	return buf.Bytes()
}

// writeMember emits one member header and body, maintaining the archive's
// two-byte alignment.
func writeMember(buf *bytes.Buffer, w *ar.Writer, diskName string, body []byte) {
	w.WriteHeader(&ar.Header{
		Name:    diskName,
		ModTime: time.Unix(0, 0),
		Mode:    0o644,
		Size:    int64(len(body)),
	})
	w.Write(body)

	if len(body)%2 != 0 {
		buf.WriteByte('\n')
	}
}
