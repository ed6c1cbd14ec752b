// Package stream decodes newline-delimited JSON (NDJSON) from a chunked
// byte stream.
//
// # Overview
//
// The decoder buffers incoming chunks, splits on newlines, and yields one
// JSON value per complete line, retaining any trailing partial line for
// the next chunk. The emitted sequence is therefore invariant to how the
// transport happened to split the payload into chunks:
//
//	dec := stream.NewDecoder(resp.Body)
//	defer dec.Close()
//	for {
//	    obj, err := dec.Next(ctx)
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    // use obj
//	}
//
// A line that fails to parse is logged and skipped; one bad line must not
// abort an otherwise valid stream. Stream-level read errors surface from
// the next call to Next. The decoder is finite and non-restartable, and
// Close releases the underlying reader on every exit path.
package stream
