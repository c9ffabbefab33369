package loader

import (
	"context"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/file"
	"github.com/apache/arrow/go/v14/parquet/pqarrow"
	"github.com/pkg/errors"

	"github.com/vizier-org/vizier/table"
)

// ============================================================================
// PARQUET — columnar loading via Apache Arrow
// ============================================================================

func loadParquetFile(path string) (*table.Table, error) {
	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer rdr.Close()
	t, err := readParquet(rdr)
	return wrapParse(path, t, err)
}

func parseParquet(r parquet.ReaderAtSeeker) (*table.Table, error) {
	rdr, err := file.NewParquetReader(r)
	if err != nil {
		return nil, err
	}
	defer rdr.Close()
	return readParquet(rdr)
}

func readParquet(rdr *file.Reader) (*table.Table, error) {
	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, err
	}
	arrowTable, err := fr.ReadTable(context.Background())
	if err != nil {
		return nil, err
	}
	defer arrowTable.Release()

	cols := make([]table.Column, arrowTable.NumCols())
	for i := 0; i < int(arrowTable.NumCols()); i++ {
		field := arrowTable.Schema().Field(i)
		col, err := convertChunked(field.Name, arrowTable.Column(i).Data())
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	return table.New(cols...)
}

// convertChunked flattens an Arrow chunked array into a table column.
// Integers and floats widen to float64; Arrow nulls become nulls.
func convertChunked(name string, chunked *arrow.Chunked) (table.Column, error) {
	values := make([]any, 0, chunked.Len())
	kind := table.KindNull

	for _, chunk := range chunked.Chunks() {
		chunkKind, err := appendChunk(&values, chunk)
		if err != nil {
			return table.Column{}, errors.Wrapf(err, "column %q", name)
		}
		if kind == table.KindNull {
			kind = chunkKind
		}
	}
	return table.Column{Name: name, Kind: kind, Values: values}, nil
}

func appendChunk(values *[]any, chunk arrow.Array) (table.Kind, error) {
	n := chunk.Len()
	appendVals := func(get func(int) any) {
		for i := 0; i < n; i++ {
			if chunk.IsNull(i) {
				*values = append(*values, nil)
			} else {
				*values = append(*values, get(i))
			}
		}
	}

	switch arr := chunk.(type) {
	case *array.Int8:
		appendVals(func(i int) any { return float64(arr.Value(i)) })
		return table.KindNumber, nil
	case *array.Int16:
		appendVals(func(i int) any { return float64(arr.Value(i)) })
		return table.KindNumber, nil
	case *array.Int32:
		appendVals(func(i int) any { return float64(arr.Value(i)) })
		return table.KindNumber, nil
	case *array.Int64:
		appendVals(func(i int) any { return float64(arr.Value(i)) })
		return table.KindNumber, nil
	case *array.Uint8:
		appendVals(func(i int) any { return float64(arr.Value(i)) })
		return table.KindNumber, nil
	case *array.Uint16:
		appendVals(func(i int) any { return float64(arr.Value(i)) })
		return table.KindNumber, nil
	case *array.Uint32:
		appendVals(func(i int) any { return float64(arr.Value(i)) })
		return table.KindNumber, nil
	case *array.Uint64:
		appendVals(func(i int) any { return float64(arr.Value(i)) })
		return table.KindNumber, nil
	case *array.Float32:
		appendVals(func(i int) any { return float64(arr.Value(i)) })
		return table.KindNumber, nil
	case *array.Float64:
		appendVals(func(i int) any { return arr.Value(i) })
		return table.KindNumber, nil
	case *array.String:
		appendVals(func(i int) any { return arr.Value(i) })
		return table.KindString, nil
	case *array.LargeString:
		appendVals(func(i int) any { return arr.Value(i) })
		return table.KindString, nil
	case *array.Boolean:
		appendVals(func(i int) any { return arr.Value(i) })
		return table.KindBool, nil
	default:
		return table.KindNull, errors.Errorf("unsupported parquet type %s", chunk.DataType())
	}
}
