package dsv_test

import (
	"bytes"
	stdcsv "encoding/csv"
	"io"
	"strings"
	"testing"

	"github.com/KimNorgaard/go-dsv"
)

func benchmarkData() []byte {
	return []byte(strings.Repeat(`alice,30,oslo,"reads, writes",active
bob,25,"bergen",,"multi
line bio"
carol,41,trondheim,"said ""hi""",
,,"",unknown,
`, 200))
}

func BenchmarkReader(b *testing.B) {
	data := benchmarkData()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	for b.Loop() {
		r, err := dsv.NewReader(bytes.NewReader(data))
		if err != nil {
			b.Fatal(err)
		}
		for {
			if _, err := r.Read(); err != nil {
				if err == io.EOF {
					break
				}
				b.Fatal(err)
			}
		}
	}
}

// BenchmarkEncodingCSV reads the same input through encoding/csv as a
// baseline for BenchmarkReader.
func BenchmarkEncodingCSV(b *testing.B) {
	data := benchmarkData()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	for b.Loop() {
		r := stdcsv.NewReader(bytes.NewReader(data))
		for {
			if _, err := r.Read(); err != nil {
				if err == io.EOF {
					break
				}
				b.Fatal(err)
			}
		}
	}
}

func BenchmarkWriter(b *testing.B) {
	data := benchmarkData()
	r, err := dsv.NewReader(bytes.NewReader(data))
	if err != nil {
		b.Fatal(err)
	}
	rows, err := r.ReadAll()
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	for b.Loop() {
		w, err := dsv.NewWriter(io.Discard)
		if err != nil {
			b.Fatal(err)
		}
		if err := w.WriteAll(rows); err != nil {
			b.Fatal(err)
		}
	}
}

type benchPerson struct {
	Name   string  `dsv:"name"`
	Age    int     `dsv:"age"`
	City   string  `dsv:"city"`
	Bio    *string `dsv:"bio"`
	Active bool    `dsv:"active"`
}

func benchmarkPeople() []benchPerson {
	bio := "reads, writes"
	people := make([]benchPerson, 0, 500)
	for i := 0; i < 500; i++ {
		people = append(people,
			benchPerson{Name: "alice", Age: 30, City: "oslo", Bio: &bio, Active: true},
			benchPerson{Name: "bob", Age: 25, City: "bergen", Bio: nil},
		)
	}
	return people
}

func BenchmarkEncode(b *testing.B) {
	people := benchmarkPeople()
	encoded, err := dsv.Marshal(people)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	// The size of one encoded document stands in for the work done per
	// operation.
	b.SetBytes(int64(len(encoded)))

	var buf bytes.Buffer
	enc := dsv.NewEncoder(&buf)

	for b.Loop() {
		if err := enc.Encode(people); err != nil {
			b.Fatal(err)
		}
		buf.Reset()
	}
}

func BenchmarkDecode(b *testing.B) {
	encoded, err := dsv.Marshal(benchmarkPeople())
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.SetBytes(int64(len(encoded)))

	for b.Loop() {
		var got []benchPerson
		if err := dsv.Unmarshal(encoded, &got); err != nil {
			b.Fatal(err)
		}
	}
}
