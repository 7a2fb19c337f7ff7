// Package archive reads and writes static library archives.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/blakesmith/ar"

	"ember/report"
)

// Kind identifies an archive flavor.  The values are frozen.
type Kind uint32

// Enumeration of archive kinds.
const (
	KindGNU Kind = 0
	KindBSD Kind = 1
)

// Member is a single member of an opened archive.
type Member struct {
	name []byte
	data []byte
}

// Name returns the member name.  The returned slice is length-delimited and
// not guaranteed to be NUL-terminated.
func (m *Member) Name() []byte {
	return m.name
}

// Data returns the raw content bytes of the member.
func (m *Member) Data() []byte {
	return m.data
}

// Archive is an archive read fully into memory.
type Archive struct {
	members []*Member
}

// NumMembers returns the number of regular members in the archive.
func (a *Archive) NumMembers() int {
	return len(a.members)
}

// MemberIter is a forward-only iterator over archive members.
type MemberIter struct {
	members []*Member
	ndx     int
}

// Item returns the member the iterator is positioned at.
func (it *MemberIter) Item() *Member {
	return it.members[it.ndx]
}

// Next moves the iterator forward one member, returning false once the
// members are exhausted.
func (it *MemberIter) Next() bool {
	it.ndx++
	return it.ndx < len(it.members)
}

// Members returns an iterator over the regular members of the archive in
// file order.  Bookkeeping members (symbol and name tables) are not
// included.
func (a *Archive) Members() *MemberIter {
	return &MemberIter{members: a.members, ndx: -1}
}

// -----------------------------------------------------------------------------

const archiveMagic = "!<arch>\n"

// Open reads an archive fully into memory and parses it.  A missing or
// corrupt archive is an expected caller-recoverable condition: the last
// error slot is set and a nil handle returned alongside the error.
func Open(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		report.SetLastError(err.Error())
		return nil, err
	}

	a, err := parse(data)
	if err != nil {
		err = fmt.Errorf("%s: %s", path, err)
		report.SetLastError(err.Error())
		return nil, err
	}

	return a, nil
}

// parse decodes an in-memory archive image.
func parse(data []byte) (*Archive, error) {
	if !bytes.HasPrefix(data, []byte(archiveMagic)) {
		return nil, fmt.Errorf("not an archive: bad magic")
	}

	a := &Archive{}
	rdr := ar.NewReader(bytes.NewReader(data))

	// The GNU long name table, once seen.
	var nameTable []byte

	for {
		hdr, err := rdr.Next()
		if err == io.EOF {
			return a, nil
		} else if err != nil {
			return nil, fmt.Errorf("corrupt archive: %s", err)
		}

		body := make([]byte, hdr.Size)
		if _, err := io.ReadFull(rdr, body); err != nil {
			return nil, fmt.Errorf("corrupt archive member `%s`: %s", hdr.Name, err)
		}

		name := strings.TrimRight(hdr.Name, " ")
		switch {
		case name == "/" || name == "/SYM64/" || name == "__.SYMDEF" || name == "__.SYMDEF SORTED":
			// Symbol table.
			continue
		case name == "//":
			nameTable = body
			continue
		}

		resolved, data, err := resolveName(name, body, nameTable)
		if err != nil {
			return nil, err
		}

		a.members = append(a.members, &Member{name: resolved, data: data})
	}
}

// resolveName maps an on-disk member name to the logical member name,
// resolving GNU name table references and BSD inline long names.
func resolveName(name string, body, nameTable []byte) ([]byte, []byte, error) {
	switch {
	case strings.HasPrefix(name, "#1/"):
		// BSD long name: the name length follows the prefix and the name
		// itself is prepended to the member data.
		n, err := strconv.Atoi(name[3:])
		if err != nil || n > len(body) {
			return nil, nil, fmt.Errorf("corrupt archive member name `%s`", name)
		}

		return bytes.TrimRight(body[:n], "\x00"), body[n:], nil
	case strings.HasPrefix(name, "/") && len(name) > 1:
		// GNU long name: an offset into the name table.
		off, err := strconv.Atoi(name[1:])
		if err != nil || off >= len(nameTable) {
			return nil, nil, fmt.Errorf("corrupt archive member name `%s`", name)
		}

		entry := nameTable[off:]
		if end := bytes.IndexByte(entry, '\n'); end != -1 {
			entry = entry[:end]
		}

		return bytes.TrimSuffix(entry, []byte("/")), body, nil
	default:
		return []byte(strings.TrimSuffix(name, "/")), body, nil
	}
}
