package manifest

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	coreerrors "github.com/davidahmann/probkit/core/errors"
)

func intRef(value int) *int {
	return &value
}

func populatedManifest() Manifest {
	return Manifest{
		Title: "Sum Of Pairs",
		Time:  2.5,
		Tags:  []string{"math", "greedy"},
		Testcases: []Testcase{
			{InputPath: "testcases/input/01", OutputPath: "testcases/output/01", Generate: false, Sample: true},
			{InputPath: "testcases/input/02", OutputPath: "testcases/output/02", Generate: true, Sample: false},
		},
		Sources: []SourceFile{
			NewSourceFile("src/sources/gen.cpp", "bin/gen", DefaultToolchains()),
			NewSourceFile("src/sources/val.cpp", "bin/val", DefaultToolchains()),
			NewSourceFile("src/sources/notes.py", "bin/notes", DefaultToolchains()),
		},
		Solutions: []Solution{
			{SourceFile: NewSourceFile("src/solutions/main.cpp", "bin/main", DefaultToolchains()), Verdict: VerdictAccepted},
			{SourceFile: NewSourceFile("src/solutions/slow.cpp", "bin/slow", DefaultToolchains()), Verdict: VerdictTimeLimitExceeded},
			{SourceFile: NewSourceFile("src/solutions/wrong.py", "bin/wrong", DefaultToolchains()), Verdict: VerdictWrongAnswer},
		},
		Validator: intRef(1),
		Checker:   nil,
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := map[string]func(*Manifest){
		"validator only": func(*Manifest) {},
		"both set": func(m *Manifest) {
			m.Checker = intRef(2)
		},
		"neither set": func(m *Manifest) {
			m.Validator = nil
		},
		"empty collections": func(m *Manifest) {
			*m = New("Empty", 1, nil)
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			original := populatedManifest()
			mutate(&original)

			encoded, err := Encode(original)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			decoded, err := Decode(encoded)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !reflect.DeepEqual(decoded, original) {
				t.Fatalf("round trip mismatch:\nwant %#v\ngot  %#v", original, decoded)
			}
			again, err := Encode(decoded)
			if err != nil {
				t.Fatalf("re-encode: %v", err)
			}
			if string(again) != string(encoded) {
				t.Fatalf("encoding is not deterministic:\n%s\n%s", encoded, again)
			}
		})
	}
}

func TestEncodeFieldOrderAndNulls(t *testing.T) {
	encoded, err := Encode(New("A", 1, nil))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	text := string(encoded)
	order := []string{`"title"`, `"time"`, `"tags"`, `"testcases"`, `"sources"`, `"solutions"`, `"validator"`, `"checker"`}
	last := -1
	for _, key := range order {
		position := strings.Index(text, key)
		if position < 0 {
			t.Fatalf("missing key %s in %s", key, text)
		}
		if position < last {
			t.Fatalf("key %s out of order in %s", key, text)
		}
		last = position
	}
	if !strings.Contains(text, `"validator": null`) || !strings.Contains(text, `"tags": []`) {
		t.Fatalf("expected null references and empty arrays: %s", text)
	}
	if !strings.HasSuffix(text, "}\n") {
		t.Fatalf("expected trailing newline: %q", text)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":               "",
		"not json":            "{title:",
		"wrong type":          `{"title":1,"time":1,"tags":[],"testcases":[],"sources":[],"solutions":[]}`,
		"missing field":       `{"title":"a","time":1,"tags":[],"testcases":[],"sources":[]}`,
		"bad verdict":         `{"title":"a","time":1,"tags":[],"testcases":[],"sources":[],"solutions":[{"sourcefile":{"source":"src/solutions/a.cpp"},"verdict":"RE"}]}`,
		"validator range":     `{"title":"a","time":1,"tags":[],"testcases":[],"sources":[],"solutions":[],"validator":0}`,
		"checker negative":    `{"title":"a","time":1,"tags":[],"testcases":[],"sources":[{"source":"src/sources/c.cpp"}],"solutions":[],"checker":-1}`,
		"testcase incomplete": `{"title":"a","time":1,"tags":[],"testcases":[{"input_path":"x"}],"sources":[],"solutions":[]}`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(input))
			if !errors.Is(err, coreerrors.ErrMalformedManifest) {
				t.Fatalf("expected ErrMalformedManifest, got %v", err)
			}
		})
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	cases := map[string]string{
		"legacy build command": `{"title":"a","time":1,"tags":[],"testcases":[],"solutions":[],"sources":[{"source":"/home/u/p/src/sources/gen.cpp","build_command":"g++ %source% -o %bin%","exec_command":"%bin%"}]}`,
		"top level":            `{"title":"a","time":1,"tags":[],"testcases":[],"sources":[],"solutions":[],"memory":256}`,
		"solution extra":       `{"title":"a","time":1,"tags":[],"testcases":[],"sources":[],"solutions":[{"sourcefile":{"source":"src/solutions/a.cpp"},"verdict":"AC","score":100}]}`,
		"testcase extra":       `{"title":"a","time":1,"tags":[],"sources":[],"solutions":[],"testcases":[{"input_path":"testcases/input/1","output_path":"testcases/output/1","generate":false,"sample":false,"group":2}]}`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(input))
			if !errors.Is(err, coreerrors.ErrMalformedManifest) {
				t.Fatalf("expected ErrMalformedManifest, got %v", err)
			}
		})
	}
}

func TestDecodeAcceptsMissingReferencesAndBuildFields(t *testing.T) {
	input := `{"title":"a","time":1,"tags":[],"testcases":[],"sources":[{"source":"src/sources/gen.py"}],"solutions":[]}`
	decoded, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Validator != nil || decoded.Checker != nil {
		t.Fatalf("expected nil references: %#v", decoded)
	}
	if decoded.Sources[0].CompilerArgs == nil || decoded.Sources[0].BinArgs == nil {
		t.Fatalf("expected normalized argument slices: %#v", decoded.Sources[0])
	}
}

func TestDigestIgnoresFormatting(t *testing.T) {
	compact := []byte(`{"title":"a","time":1}`)
	pretty := []byte("{\n  \"time\": 1,\n  \"title\": \"a\"\n}\n")
	first, err := Digest(compact)
	if err != nil {
		t.Fatalf("digest compact: %v", err)
	}
	second, err := Digest(pretty)
	if err != nil {
		t.Fatalf("digest pretty: %v", err)
	}
	if first != second || len(first) != 64 {
		t.Fatalf("expected equal 64-char digests, got %s and %s", first, second)
	}
	changed, err := Digest([]byte(`{"title":"b","time":1}`))
	if err != nil {
		t.Fatalf("digest changed: %v", err)
	}
	if changed == first {
		t.Fatal("expected different digest for different content")
	}
}
