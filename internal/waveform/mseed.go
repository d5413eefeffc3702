package waveform

import (
	"encoding/binary"
	"io"
	"math"
	"time"

	"github.com/GeoNet/kit/seis/ms"
	"github.com/pkg/errors"
)

// the record length of the miniSEED records read and written here.
const recordLength int = 512

const (
	dataOffset       = 64
	samplesPerRecord = (recordLength - dataOffset) / 8
	// blockette 1000 record length is a power of two.
	recordLengthExp = 9
)

// ReadMiniSEED reads miniSEED from r in 512 byte records and returns the samples as a Trace.
// Expects a single stream (not multiplexed miniSEED) at a constant sample rate in r.
// Records are joined in the order they are read; gaps are not filled.
func ReadMiniSEED(r io.Reader) (Trace, error) {
	record := make([]byte, recordLength)

	var t Trace
	var src string

loop:
	for {
		_, err := io.ReadFull(r, record)
		switch {
		case err == io.EOF:
			break loop
		case err != nil:
			return Trace{}, err
		}

		msr, err := ms.NewRecord(record)
		if err != nil {
			return Trace{}, err
		}

		samples, err := msr.Float64s()
		if err != nil {
			return Trace{}, errors.Wrapf(err, "decoding %s", msr.SrcName(false))
		}

		if src == "" {
			src = msr.SrcName(false)
			t = Trace{
				Network:    msr.Network(),
				Station:    msr.Station(),
				Location:   msr.Location(),
				Channel:    msr.Channel(),
				Start:      msr.StartTime(),
				SampleRate: msr.SampleRate(),
			}
		}

		if msr.SrcName(false) != src {
			return Trace{}, errors.Errorf("found multiple streams: %s and %s", src, msr.SrcName(false))
		}

		if msr.SampleRate() != t.SampleRate {
			return Trace{}, errors.Errorf("sample rate changed from %v to %v in %s", t.SampleRate, msr.SampleRate(), src)
		}

		t.Samples = append(t.Samples, samples...)
	}

	if src == "" {
		return Trace{}, ErrNoSamples
	}

	return t, nil
}

// EncodeMiniSEED writes t to w as 512 byte big endian float64 miniSEED records.
func EncodeMiniSEED(w io.Writer, t Trace) error {
	factor, multiplier, err := rateFactors(t.SampleRate)
	if err != nil {
		return err
	}

	record := make([]byte, recordLength)
	start := t.Start.UTC()

	for i, seq := 0, 1; i < len(t.Samples); i, seq = i+samplesPerRecord, seq+1 {
		n := len(t.Samples) - i
		if n > samplesPerRecord {
			n = samplesPerRecord
		}

		hdr := ms.RecordHeader{
			DataQualityIndicator:         'D',
			ReservedByte:                 ' ',
			NumberOfSamples:              uint16(n),
			SampleRateFactor:             factor,
			SampleRateMultiplier:         multiplier,
			NumberOfBlockettesThatFollow: 1,
			BeginningOfData:              dataOffset,
			FirstBlockette:               ms.RecordHeaderSize,
		}
		hdr.SetSeqNumber(seq % 1000000)
		hdr.SetNetwork(t.Network)
		hdr.SetStation(t.Station)
		hdr.SetLocation(t.Location)
		hdr.SetChannel(t.Channel)
		hdr.SetStartTime(start.Add(time.Duration(float64(i) / t.SampleRate * float64(time.Second))))

		for j := range record {
			record[j] = 0
		}

		copy(record, ms.EncodeRecordHeader(hdr))
		copy(record[ms.RecordHeaderSize:], ms.EncodeBlocketteHeader(ms.BlocketteHeader{BlocketteType: 1000}))
		copy(record[ms.RecordHeaderSize+ms.BlocketteHeaderSize:], ms.EncodeBlockette1000(ms.Blockette1000{
			Encoding:     uint8(ms.EncodingIEEEDouble),
			WordOrder:    uint8(ms.BigEndian),
			RecordLength: recordLengthExp,
		}))

		for j := 0; j < n; j++ {
			binary.BigEndian.PutUint64(record[dataOffset+8*j:], math.Float64bits(t.Samples[i+j]))
		}

		if _, err := w.Write(record); err != nil {
			return err
		}
	}

	return nil
}

// rateFactors converts fs into SEED sample rate factor and multiplier.
func rateFactors(fs float64) (int16, int16, error) {
	if !ValidRate(fs) {
		return 0, 0, errors.Wrapf(ErrSampleRate, "got %v", fs)
	}

	switch {
	case fs >= 1 && fs == math.Trunc(fs) && fs <= math.MaxInt16:
		return int16(fs), 1, nil
	case fs < 1 && 1/fs == math.Trunc(1/fs) && 1/fs <= math.MaxInt16:
		return -int16(1 / fs), 1, nil
	case fs*100 <= math.MaxInt16 && math.Abs(fs*100-math.Round(fs*100)) < 1e-6:
		return int16(math.Round(fs * 100)), -100, nil
	}

	return 0, 0, errors.Errorf("can not represent sample rate %v in miniSEED", fs)
}
