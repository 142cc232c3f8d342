package overlay

import (
	"image"
	"testing"

	"gocv.io/x/gocv"

	"github.com/JuzJuJazzy/motoSaaS/pkg/camera"
	"github.com/JuzJuJazzy/motoSaaS/pkg/pipeline"
	"github.com/JuzJuJazzy/motoSaaS/pkg/tracking/detection"
)

func grayMat(w, h int) gocv.Mat {
	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(128, 128, 128, 0))
	return mat
}

func testResult(approaching bool) pipeline.Result {
	return pipeline.Result{
		ModelWidth:  640,
		ModelHeight: 640,
		Detections: []detection.Detection{{
			ID: 1, CenterX: 320, CenterY: 320, Width: 200, Height: 200,
			Label: "car", Confidence: 0.9, Approaching: approaching,
		}},
	}
}

func TestRenderLetterboxAndColors(t *testing.T) {
	src := grayMat(64, 48)
	defer src.Close()

	r := New(DefaultConfig(), nil)

	tests := []struct {
		name        string
		approaching bool
		want        []uint8 // BGR
	}{
		{"approaching is red", true, []uint8{0, 0, 255}},
		{"other is green", false, []uint8{0, 255, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Render(src, testResult(tt.approaching))
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			defer out.Close()

			if out.Cols() != 64 || out.Rows() != 48 {
				t.Fatalf("size %dx%d, want 64x48", out.Cols(), out.Rows())
			}

			// Content is 48x48 centered at x=8; the box maps to (25,17)-(40,32).
			v := out.GetVecbAt(24, 25)
			if v[0] != tt.want[0] || v[1] != tt.want[1] || v[2] != tt.want[2] {
				t.Errorf("box edge = %v, want %v", v, tt.want)
			}
			if bar := out.GetVecbAt(2, 2); bar[0] != 0 || bar[1] != 0 || bar[2] != 0 {
				t.Errorf("pillarbox = %v, want black", bar)
			}
			if inside := out.GetVecbAt(5, 12); inside[0] != 128 {
				t.Errorf("content = %v, want gray", inside)
			}
		})
	}
}

func TestRenderRejectsMissingModelSize(t *testing.T) {
	src := grayMat(16, 16)
	defer src.Close()

	out, err := New(DefaultConfig(), nil).Render(src, pipeline.Result{})
	defer out.Close()
	if err == nil {
		t.Error("expected error without model size")
	}
}

func TestConsumeEncodesJPEG(t *testing.T) {
	var got []byte
	var gotSeq uint64
	r := New(Config{ViewWidth: 320, ViewHeight: 240, Quality: 70}, func(jpeg []byte, res pipeline.Result) {
		got = jpeg
		gotSeq = res.Seq
	})

	img := image.NewNRGBA(image.Rect(0, 0, 64, 48))
	frame, err := camera.NewImageFrame(9, img, 0)
	if err != nil {
		t.Fatalf("NewImageFrame: %v", err)
	}
	defer frame.Close()

	res := testResult(true)
	res.Seq = 9
	r.Consume(frame, res)

	if len(got) < 4 || got[0] != 0xFF || got[1] != 0xD8 {
		t.Fatalf("expected JPEG output, got %d bytes", len(got))
	}
	if gotSeq != 9 {
		t.Errorf("seq = %d, want 9", gotSeq)
	}

	decoded, err := gocv.IMDecode(got, gocv.IMReadColor)
	if err != nil {
		t.Fatalf("IMDecode: %v", err)
	}
	defer decoded.Close()
	if decoded.Cols() != 320 || decoded.Rows() != 240 {
		t.Errorf("decoded %dx%d, want 320x240", decoded.Cols(), decoded.Rows())
	}
}
