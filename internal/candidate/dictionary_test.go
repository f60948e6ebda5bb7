package candidate

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// openTestDictionary writes contents to a temp file and opens it as a
// Dictionary split on '\n', registering a cleanup to close it.
func openTestDictionary(t *testing.T, contents string) *Dictionary {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wordlist.txt")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	d, err := OpenDictionary(path, '\n')
	if err != nil {
		t.Fatalf("OpenDictionary: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

// TestDictionary_SingleWorkerOrderPreserved verifies that with one worker
// the entries are emitted in file order, blank lines dropped.
func TestDictionary_SingleWorkerOrderPreserved(t *testing.T) {
	d := openTestDictionary(t, "alpha\nbravo\n\ncharlie\ndelta")
	got := drain(d.Partition(1), 2)
	want := []string{"alpha", "bravo", "charlie", "delta"}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i, w := range want {
		if string(got[i]) != w {
			t.Errorf("got[%d] = %q, want %q", i, got[i], w)
		}
	}
}

// TestDictionary_PartitionNeverSplitsAnEntry verifies that for many worker
// counts, every entry from a larger wordlist appears exactly once across
// all partitions, and no partial (split) entries appear.
func TestDictionary_PartitionNeverSplitsAnEntry(t *testing.T) {
	var buf bytes.Buffer
	var want []string
	for i := 0; i < 500; i++ {
		entry := padWord(i)
		want = append(want, entry)
		buf.WriteString(entry)
		buf.WriteByte('\n')
	}
	d := openTestDictionary(t, buf.String())

	for _, n := range []int{1, 2, 3, 7, 32} {
		got := map[string]int{}
		for _, b := range drain(d.Partition(n), 16) {
			got[string(b)]++
		}
		if len(got) != len(want) {
			t.Errorf("n=%d: got %d unique entries, want %d", n, len(got), len(want))
		}
		for _, w := range want {
			if got[w] != 1 {
				t.Errorf("n=%d: entry %q seen %d times, want 1", n, w, got[w])
			}
		}
	}
}

// padWord returns a deterministic short word for index i, unique per index
// and of varying length so that word boundaries land at varied,
// non-uniform byte offsets.
func padWord(i int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, 3+(i%5))
	for j := range b {
		b[j] = alphabet[(i+j)%len(alphabet)]
	}
	return string(b) + strconv.Itoa(i)
}

// TestDictionary_OversizedEntrySkippedNotFatal verifies that an entry
// longer than MaxEntryLength is dropped, counted in Skipped, and does not
// stop enumeration of the surrounding entries.
func TestDictionary_OversizedEntrySkippedNotFatal(t *testing.T) {
	huge := make([]byte, MaxEntryLength+1)
	for i := range huge {
		huge[i] = 'x'
	}
	contents := "before\n" + string(huge) + "\nafter"
	d := openTestDictionary(t, contents)

	got := drain(d.Partition(1), 10)
	want := []string{"before", "after"}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i, w := range want {
		if string(got[i]) != w {
			t.Errorf("got[%d] = %q, want %q", i, got[i], w)
		}
	}
	if d.Skipped() != 1 {
		t.Errorf("Skipped() = %d, want 1", d.Skipped())
	}
}

// TestDictionary_CustomDelimiter verifies splitting on a delimiter other
// than '\n'.
func TestDictionary_CustomDelimiter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordlist.txt")
	if err := os.WriteFile(path, []byte("one,two,three"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	d, err := OpenDictionary(path, ',')
	if err != nil {
		t.Fatalf("OpenDictionary: %v", err)
	}
	defer d.Close()

	got := drain(d.Partition(1), 10)
	want := []string{"one", "two", "three"}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i, w := range want {
		if string(got[i]) != w {
			t.Errorf("got[%d] = %q, want %q", i, got[i], w)
		}
	}
}
