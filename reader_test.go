package dsv_test

import (
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/KimNorgaard/go-dsv"
	"github.com/stretchr/testify/require"
)

// Shorthands shared by the package's tests.
func pf(s string) dsv.Field { return dsv.NewField(s) }

var nullf = dsv.NullField()

func mustReader(t *testing.T, in string, opts ...dsv.Option) *dsv.Reader {
	t.Helper()
	r, err := dsv.NewReader(strings.NewReader(in), opts...)
	require.NoError(t, err)
	return r
}

func rowFields(rows []dsv.Row) [][]dsv.Field {
	out := make([][]dsv.Field, len(rows))
	for i, row := range rows {
		out[i] = row.Fields()
	}
	return out
}

func TestReader_Read(t *testing.T) {
	r := mustReader(t, "a,,\"\"\nd,e,f\n")

	row, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, []dsv.Field{pf("a"), nullf, pf("")}, row.Fields())
	require.Equal(t, 1, row.Line())
	require.Equal(t, 3, row.Len())

	row, err = r.Read()
	require.NoError(t, err)
	require.Equal(t, []dsv.Field{pf("d"), pf("e"), pf("f")}, row.Fields())
	require.Equal(t, 2, row.Line())

	_, err = r.Read()
	require.Equal(t, io.EOF, err)

	// io.EOF repeats; it is an end state, not a failure.
	_, err = r.Read()
	require.Equal(t, io.EOF, err)
}

func TestReader_TerminatorStyles(t *testing.T) {
	want := [][]dsv.Field{
		{pf("a"), pf("b")},
		{pf("c"), pf("d")},
	}
	for name, in := range map[string]string{
		"lf":          "a,b\nc,d\n",
		"crlf":        "a,b\r\nc,d\r\n",
		"cr":          "a,b\rc,d\r",
		"mixed":       "a,b\r\nc,d\n",
		"no trailing": "a,b\nc,d",
	} {
		t.Run(name, func(t *testing.T) {
			rows, err := mustReader(t, in).ReadAll()
			require.NoError(t, err)
			require.Equal(t, want, rowFields(rows))
		})
	}
}

func TestReader_Header(t *testing.T) {
	t.Run("Names and lookup", func(t *testing.T) {
		r := mustReader(t, "name,age\nalice,30\n", dsv.UseHeader())

		h, err := r.Header()
		require.NoError(t, err)
		require.Equal(t, []string{"name", "age"}, h.Names())
		require.Equal(t, 2, h.Len())

		i, ok := h.Index("age")
		require.True(t, ok)
		require.Equal(t, 1, i)
		_, ok = h.Index("missing")
		require.False(t, ok)

		row, err := r.Read()
		require.NoError(t, err)
		require.Same(t, h, row.Header())
		require.Equal(t, 2, row.Line(), "header occupies line 1")

		f, ok := row.Lookup("age")
		require.True(t, ok)
		require.Equal(t, pf("30"), f)
		_, ok = row.Lookup("missing")
		require.False(t, ok)
	})

	t.Run("Header is read once", func(t *testing.T) {
		r := mustReader(t, "name\nalice\n", dsv.UseHeader())

		h1, err := r.Header()
		require.NoError(t, err)
		h2, err := r.Header()
		require.NoError(t, err)
		require.Same(t, h1, h2)

		row, err := r.Read()
		require.NoError(t, err)
		require.Equal(t, []dsv.Field{pf("alice")}, row.Fields())
	})

	t.Run("Read alone consumes the header", func(t *testing.T) {
		r := mustReader(t, "name\nalice\n", dsv.UseHeader())

		row, err := r.Read()
		require.NoError(t, err)
		require.Equal(t, []dsv.Field{pf("alice")}, row.Fields())
	})

	t.Run("Nil without UseHeader", func(t *testing.T) {
		r := mustReader(t, "a,b\n")
		h, err := r.Header()
		require.NoError(t, err)
		require.Nil(t, h)
	})

	t.Run("Blank and comment lines before the header", func(t *testing.T) {
		r := mustReader(t, "\n#generated\nname\nalice\n", dsv.UseHeader(), dsv.Comment('#'))

		h, err := r.Header()
		require.NoError(t, err)
		require.Equal(t, []string{"name"}, h.Names())

		row, err := r.Read()
		require.NoError(t, err)
		require.Equal(t, 4, row.Line())
	})

	t.Run("Empty input", func(t *testing.T) {
		r := mustReader(t, "", dsv.UseHeader())
		_, err := r.Header()
		require.Equal(t, io.EOF, err)
	})
}

func TestReader_HeaderValidation(t *testing.T) {
	requireHeaderError := func(t *testing.T, in string, sentinel error, contains string) {
		t.Helper()
		r := mustReader(t, in, dsv.UseHeader())
		_, err := r.Read()
		require.Error(t, err)
		require.ErrorIs(t, err, sentinel)
		require.Contains(t, err.Error(), contains)

		var perr *dsv.ParseError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, 1, perr.Line)
	}

	t.Run("Null header cell", func(t *testing.T) {
		requireHeaderError(t, "name,,city\nv1,v2,v3\n", dsv.ErrBlankName, "column 2")
	})

	t.Run("Quoted empty header cell", func(t *testing.T) {
		requireHeaderError(t, "name,\"\",city\nv1,v2,v3\n", dsv.ErrBlankName, "column 2")
	})

	t.Run("Whitespace header cell", func(t *testing.T) {
		requireHeaderError(t, "name,\" \",city\nv1,v2,v3\n", dsv.ErrBlankName, "column 2")
	})

	t.Run("Duplicate header names", func(t *testing.T) {
		requireHeaderError(t, "name,age,name\nv1,v2,v3\n", dsv.ErrDuplicateName, `"name"`)
	})

	t.Run("Header errors are never skippable", func(t *testing.T) {
		r := mustReader(t, "name,name\nv1,v2\n", dsv.UseHeader(), dsv.SkipInvalidRows())
		_, err := r.Read()
		require.ErrorIs(t, err, dsv.ErrDuplicateName)

		_, err = r.Header()
		require.ErrorIs(t, err, dsv.ErrDuplicateName)
	})
}

func TestReader_SkipRows(t *testing.T) {
	t.Run("Preamble before header", func(t *testing.T) {
		in := "Report generated 2024-08-01\nsome free text\nname,value\nco2,415\n"
		r := mustReader(t, in, dsv.SkipRows(2), dsv.UseHeader())

		h, err := r.Header()
		require.NoError(t, err)
		require.Equal(t, []string{"name", "value"}, h.Names())

		row, err := r.Read()
		require.NoError(t, err)
		require.Equal(t, []dsv.Field{pf("co2"), pf("415")}, row.Fields())
		require.Equal(t, 4, row.Line(), "skipped records still count")
	})

	t.Run("Skip past the end of input", func(t *testing.T) {
		r := mustReader(t, "only,one\n", dsv.SkipRows(5))
		_, err := r.Read()
		require.Equal(t, io.EOF, err)
	})
}

func TestReader_BlankLines(t *testing.T) {
	t.Run("Skipped by default", func(t *testing.T) {
		rows, err := mustReader(t, "a\n\n\nb\n").ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 2)
		require.Equal(t, 1, rows[0].Line())
		require.Equal(t, 4, rows[1].Line(), "blank lines advance the counter")
	})

	t.Run("ErrorOnBlankLines", func(t *testing.T) {
		r := mustReader(t, "a\n\nb\n", dsv.ErrorOnBlankLines())

		_, err := r.Read()
		require.NoError(t, err)

		_, err = r.Read()
		require.ErrorIs(t, err, dsv.ErrBlankLine)
		var perr *dsv.ParseError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, 2, perr.Line)
	})

	t.Run("Not subject to SkipInvalidRows", func(t *testing.T) {
		var skipped int
		r := mustReader(t, "a\n\nb\n",
			dsv.ErrorOnBlankLines(),
			dsv.SkipInvalidRows(),
			dsv.OnSkippedRow(func(int, error) { skipped++ }))

		_, err := r.Read()
		require.NoError(t, err)
		_, err = r.Read()
		require.ErrorIs(t, err, dsv.ErrBlankLine)
		require.Zero(t, skipped)
	})

	t.Run("Blank-only input is empty", func(t *testing.T) {
		rows, err := mustReader(t, "\n\n\n").ReadAll()
		require.NoError(t, err)
		require.Empty(t, rows)
	})
}

func TestReader_Comments(t *testing.T) {
	t.Run("Skipped when configured", func(t *testing.T) {
		in := "#header comment\na,b\n#between rows\nc,d\n"
		rows, err := mustReader(t, in, dsv.Comment('#')).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 2)
		require.Equal(t, 2, rows[0].Line())
		require.Equal(t, 4, rows[1].Line())
	})

	t.Run("Only the first character counts", func(t *testing.T) {
		rows, err := mustReader(t, "a#b,c\n", dsv.Comment('#')).ReadAll()
		require.NoError(t, err)
		require.Equal(t, [][]dsv.Field{{pf("a#b"), pf("c")}}, rowFields(rows))
	})

	t.Run("Data when not configured", func(t *testing.T) {
		rows, err := mustReader(t, "#a,b\n").ReadAll()
		require.NoError(t, err)
		require.Equal(t, [][]dsv.Field{{pf("#a"), pf("b")}}, rowFields(rows))
	})
}

func TestReader_FieldCount(t *testing.T) {
	t.Run("Short row", func(t *testing.T) {
		r := mustReader(t, "a,b\n1,2\n3\n", dsv.UseHeader())

		row, err := r.Read()
		require.NoError(t, err)
		require.Equal(t, []dsv.Field{pf("1"), pf("2")}, row.Fields())

		_, err = r.Read()
		require.ErrorIs(t, err, dsv.ErrFieldCount)
		var perr *dsv.ParseError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, 3, perr.Line)
	})

	t.Run("Long row", func(t *testing.T) {
		r := mustReader(t, "a,b\n1,2,3\n", dsv.UseHeader())
		_, err := r.Read()
		require.ErrorIs(t, err, dsv.ErrFieldCount)
	})

	t.Run("No header, ragged rows are fine", func(t *testing.T) {
		rows, err := mustReader(t, "a\nb,c,d\n").ReadAll()
		require.NoError(t, err)
		require.Equal(t, 1, rows[0].Len())
		require.Equal(t, 3, rows[1].Len())
	})
}

func TestReader_SkipInvalidRows(t *testing.T) {
	t.Run("Structural and arity errors are skipped", func(t *testing.T) {
		in := "name,age\nok,1\n\"x\" oops,2\nshort\na,b,c\nfine,3\n"

		type discard struct {
			line int
			err  error
		}
		var discards []discard
		r := mustReader(t, in,
			dsv.UseHeader(),
			dsv.SkipInvalidRows(),
			dsv.OnSkippedRow(func(line int, err error) {
				discards = append(discards, discard{line, err})
			}))

		rows, err := r.ReadAll()
		require.NoError(t, err)
		require.Equal(t, [][]dsv.Field{
			{pf("ok"), pf("1")},
			{pf("fine"), pf("3")},
		}, rowFields(rows))
		require.Equal(t, 6, r.Line())

		require.Len(t, discards, 3)
		require.Equal(t, 3, discards[0].line)
		require.ErrorIs(t, discards[0].err, dsv.ErrTrailingContent)
		require.Equal(t, 4, discards[1].line)
		require.ErrorIs(t, discards[1].err, dsv.ErrFieldCount)
		require.Equal(t, 5, discards[2].line)
		require.ErrorIs(t, discards[2].err, dsv.ErrFieldCount)
	})

	t.Run("Unbalanced quote swallows the rest of the input", func(t *testing.T) {
		// Record splitting is quote-aware, so an unterminated quote
		// absorbs every following line into one oversized record.
		var lines []int
		r := mustReader(t, "ok,1\n\"open\nmore,2\n",
			dsv.SkipInvalidRows(),
			dsv.OnSkippedRow(func(line int, err error) { lines = append(lines, line) }))

		rows, err := r.ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.Equal(t, []int{2}, lines)
	})

	t.Run("Without the policy the first error is fatal", func(t *testing.T) {
		r := mustReader(t, "a,b\n\"x\" oops\nc,d\n")
		rows, err := r.ReadAll()
		require.ErrorIs(t, err, dsv.ErrTrailingContent)
		require.Len(t, rows, 1)
	})
}

func TestReader_StickyErrors(t *testing.T) {
	r := mustReader(t, "fine\n\"x\" oops\nnever reached\n")

	_, err := r.Read()
	require.NoError(t, err)

	_, err1 := r.Read()
	require.ErrorIs(t, err1, dsv.ErrTrailingContent)

	_, err2 := r.Read()
	require.Same(t, err1, err2, "the reader halts on its first error")

	_, err3 := r.Header()
	require.Same(t, err1, err3)
}

func TestReader_EmbeddedNewlines(t *testing.T) {
	in := "a,\"x\ny\"\r\nb,c\r\n"
	r := mustReader(t, in)

	row, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, []dsv.Field{pf("a"), pf("x\ny")}, row.Fields())
	require.Equal(t, 1, row.Line())

	row, err = r.Read()
	require.NoError(t, err)
	require.Equal(t, 2, row.Line(), "a record with embedded newlines counts once")
}

func TestReader_MaxRecordSize(t *testing.T) {
	t.Run("Oversized record fails", func(t *testing.T) {
		r := mustReader(t, "aaaaaaaaaa,b\nx,y\n", dsv.MaxRecordSize(5))

		_, err := r.Read()
		require.ErrorIs(t, err, dsv.ErrRecordTooLarge)
		var perr *dsv.ParseError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, 1, perr.Line)
	})

	t.Run("Never skippable", func(t *testing.T) {
		r := mustReader(t, "aaaaaaaaaa\nx\n", dsv.MaxRecordSize(5), dsv.SkipInvalidRows())
		_, err := r.Read()
		require.ErrorIs(t, err, dsv.ErrRecordTooLarge)

		_, err2 := r.Read()
		require.Same(t, err, err2)
	})

	t.Run("Records at the cap pass", func(t *testing.T) {
		rows, err := mustReader(t, "abcde\nxy\n", dsv.MaxRecordSize(5)).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 2)
	})
}

func TestReader_Dialects(t *testing.T) {
	t.Run("TSV", func(t *testing.T) {
		rows, err := mustReader(t, "a\tb\nc\td\n", dsv.Delimiter('\t')).ReadAll()
		require.NoError(t, err)
		require.Equal(t, [][]dsv.Field{
			{pf("a"), pf("b")},
			{pf("c"), pf("d")},
		}, rowFields(rows))
	})

	t.Run("Null token", func(t *testing.T) {
		rows, err := mustReader(t, "a,NULL\n\"NULL\",b\n", dsv.NullValue("NULL")).ReadAll()
		require.NoError(t, err)
		require.Equal(t, [][]dsv.Field{
			{pf("a"), nullf},
			{pf("NULL"), pf("b")},
		}, rowFields(rows))
	})

	t.Run("TrimSpace", func(t *testing.T) {
		rows, err := mustReader(t, "  a  , b ,\" c \"\n", dsv.TrimSpace()).ReadAll()
		require.NoError(t, err)
		require.Equal(t, [][]dsv.Field{{pf("a"), pf("b"), pf(" c ")}}, rowFields(rows))
	})
}

func TestReader_ReadAll(t *testing.T) {
	t.Run("Drains the input", func(t *testing.T) {
		rows, err := mustReader(t, "a\nb\nc\n").ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 3)
	})

	t.Run("Returns rows read before an error", func(t *testing.T) {
		rows, err := mustReader(t, "a,b\n\"x\" y\nc,d\n").ReadAll()
		require.Error(t, err)
		require.Equal(t, [][]dsv.Field{{pf("a"), pf("b")}}, rowFields(rows))
	})
}

func TestReader_BufferRefillInvariance(t *testing.T) {
	in := "name,note\nalice,\"multi\nline ☃\"\nbob,\nlong," + strings.Repeat("x", 10000) + "\n"

	whole := mustReader(t, in, dsv.UseHeader())
	wantRows, err := whole.ReadAll()
	require.NoError(t, err)

	r, err := dsv.NewReader(iotest.OneByteReader(strings.NewReader(in)), dsv.UseHeader())
	require.NoError(t, err)
	gotRows, err := r.ReadAll()
	require.NoError(t, err)

	require.Equal(t, rowFields(wantRows), rowFields(gotRows))
}

func TestNewReader_OptionErrors(t *testing.T) {
	cases := map[string][]dsv.Option{
		"delimiter equals quote":    {dsv.Delimiter('"')},
		"newline delimiter":         {dsv.Delimiter('\n')},
		"zero quote":                {dsv.Quote(0)},
		"comment equals delimiter":  {dsv.Comment(',')},
		"comment equals quote":      {dsv.Comment('"')},
		"null token with delimiter": {dsv.NullValue("a,b")},
		"null token with quote":     {dsv.NullValue(`a"b`)},
		"null token with newline":   {dsv.NullValue("a\nb")},
		"negative skip rows":        {dsv.SkipRows(-1)},
		"negative max record size":  {dsv.MaxRecordSize(-1)},
		"nil skip callback":         {dsv.OnSkippedRow(nil)},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := dsv.NewReader(strings.NewReader(""), opts...)
			require.Error(t, err)
		})
	}
}
