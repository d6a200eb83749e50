package metrics

import (
    "math"

    "gonum.org/v1/gonum/stat"
)

func MSE(yTrue, yPred []float64) float64 {
    if len(yTrue) == 0 { return 0 }
    s := 0.0
    for i := range yTrue {
        d := yPred[i] - yTrue[i]
        s += d * d
    }
    return s / float64(len(yTrue))
}

func MAE(yTrue, yPred []float64) float64 {
    if len(yTrue) == 0 { return 0 }
    s := 0.0
    for i := range yTrue { s += math.Abs(yPred[i] - yTrue[i]) }
    return s / float64(len(yTrue))
}

func R2(yTrue, yPred []float64) float64 {
    return stat.RSquaredFrom(yPred, yTrue, nil)
}
