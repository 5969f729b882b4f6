package wheel

import "testing"

func TestParse_Wheel(t *testing.T) {
	a := Parse("vllm-0.6.1.post1+cu118-cp312-cp312-manylinux1_x86_64.whl")

	if a.Type != TypeWheel {
		t.Fatalf("expected wheel, got %s", a.Type)
	}
	if a.Name != "vllm" {
		t.Errorf("expected name vllm, got %s", a.Name)
	}
	if a.Version != "0.6.1.post1+cu118" {
		t.Errorf("expected version 0.6.1.post1+cu118, got %s", a.Version)
	}
	if a.PythonTag != "cp312" || a.ABITag != "cp312" {
		t.Errorf("expected cp312/cp312 tags, got %s/%s", a.PythonTag, a.ABITag)
	}
	if a.PlatformTag != "manylinux1_x86_64" {
		t.Errorf("expected platform manylinux1_x86_64, got %s", a.PlatformTag)
	}
}

func TestParse_PercentEncodedVersion(t *testing.T) {
	a := Parse("vllm-0.6.1.post1%2Bcu118-cp38-abi3-manylinux1_x86_64.whl")

	if a.Type != TypeWheel {
		t.Fatalf("expected wheel, got %s", a.Type)
	}
	if a.Version != "0.6.1.post1+cu118" {
		t.Errorf("expected decoded version, got %s", a.Version)
	}
}

func TestParse_SourceDistribution(t *testing.T) {
	for _, name := range []string{"vllm-0.9.2.tar.gz", "vllm-0.9.2.zip"} {
		a := Parse(name)
		if a.Type != TypeSource {
			t.Errorf("%s: expected source, got %s", name, a.Type)
		}
		if a.Name != "" || a.PythonTag != "" || a.ABITag != "" || a.PlatformTag != "" {
			t.Errorf("%s: expected no tag fields, got %+v", name, a)
		}
	}
}

func TestParse_Unrecognized(t *testing.T) {
	for _, name := range []string{"README.md", "vllm.whl", "index.html", ""} {
		a := Parse(name)
		if a.Type != TypeUnknown {
			t.Errorf("%s: expected unknown, got %s", name, a.Type)
		}
		if a.Filename != name {
			t.Errorf("%s: filename not retained, got %s", name, a.Filename)
		}
	}
}

func TestWheelFilename_RoundTrip(t *testing.T) {
	names := []string{
		"vllm-0.6.1.post1+cu118-cp312-cp312-manylinux1_x86_64.whl",
		"vllm-0.9.2-cp38-abi3-manylinux1_x86_64.whl",
		"vllm_flash_attn-2.6.2-cp310-cp310-linux_x86_64.whl",
	}
	for _, name := range names {
		a := Parse(name)
		if got := a.WheelFilename(); got != name {
			t.Errorf("round trip mismatch: got %s, want %s", got, name)
		}
	}
}

func TestWheelFilename_NormalizesEncoding(t *testing.T) {
	a := Parse("vllm-0.6.1.post1%2Bcu118-cp312-cp312-manylinux1_x86_64.whl")
	want := "vllm-0.6.1.post1+cu118-cp312-cp312-manylinux1_x86_64.whl"
	if got := a.WheelFilename(); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestWheelFilename_NonWheelPassthrough(t *testing.T) {
	a := Parse("vllm-0.9.2.tar.gz")
	if got := a.WheelFilename(); got != "vllm-0.9.2.tar.gz" {
		t.Errorf("got %s, want original filename", got)
	}
}
