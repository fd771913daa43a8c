package scan

import (
	"context"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// ZXingDecoder decodes frames and still images with the gozxing port of ZXing.
// It recognizes the retail 1D symbologies plus QR. A reader miss on a frame is
// an empty result, not an error — the polling loop just tries the next frame.
type ZXingDecoder struct {
	oneD  gozxing.Reader
	qr    gozxing.Reader
	hints map[gozxing.DecodeHintType]interface{}
}

func NewZXingDecoder() *ZXingDecoder {
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	return &ZXingDecoder{
		oneD:  oned.NewMultiFormatOneDReader(hints),
		qr:    qrcode.NewQRCodeReader(),
		hints: hints,
	}
}

func (d *ZXingDecoder) Supported() bool { return true }

func (d *ZXingDecoder) Detect(ctx context.Context, frames FrameSource) ([]DetectedCode, error) {
	img, err := frames.Frame(ctx)
	if err != nil {
		return nil, err
	}
	return d.DetectStill(ctx, img)
}

func (d *ZXingDecoder) DetectStill(_ context.Context, img image.Image) ([]DetectedCode, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, err
	}

	for _, reader := range []gozxing.Reader{d.oneD, d.qr} {
		result, err := reader.Decode(bmp, d.hints)
		if err != nil {
			// No code of this family in the frame — try the next reader.
			continue
		}
		return []DetectedCode{{
			Value:  result.GetText(),
			Format: symbologyOf(result.GetBarcodeFormat()),
		}}, nil
	}
	return nil, nil
}

func symbologyOf(f gozxing.BarcodeFormat) Symbology {
	switch f {
	case gozxing.BarcodeFormat_EAN_13:
		return SymbologyEAN13
	case gozxing.BarcodeFormat_EAN_8:
		return SymbologyEAN8
	case gozxing.BarcodeFormat_UPC_A:
		return SymbologyUPCA
	case gozxing.BarcodeFormat_UPC_E:
		return SymbologyUPCE
	case gozxing.BarcodeFormat_CODE_128:
		return SymbologyCode128
	case gozxing.BarcodeFormat_CODE_39:
		return SymbologyCode39
	case gozxing.BarcodeFormat_QR_CODE:
		return SymbologyQR
	default:
		return SymbologyUnknown
	}
}
