//go:build windows

package webgpu

// workgroupSize is the number of threads per workgroup in every kernel.
const workgroupSize = 256

// maxWorkgroupsPerDim is the WebGPU limit on workgroups along one dispatch
// axis. Larger launches spill into the y axis.
const maxWorkgroupsPerDim = 65535

// paramsSize is the byte size of the Params uniform (eight u32 fields).
const paramsSize = 32

// paramsWGSL declares the geometry shared by all kernels.
const paramsWGSL = `
struct Params {
    channels: u32,
    depth: u32,
    grid_width: u32,
    grid_height: u32,
    guide_width: u32,
    guide_height: u32,
    batch: u32,
    units: u32,
}

fn unit_index(gid: vec3<u32>, nwg: vec3<u32>) -> u32 {
    return gid.x + gid.y * nwg.x * 256u;
}
`

// weightsWGSL holds the interpolation weights and boundary rules.
const weightsWGSL = `
const SMOOTH_EPS: f32 = 1e-8;

fn lerp_weight(x: f32, xs: f32) -> f32 {
    return max(1.0 - abs(x - xs), 0.0);
}

fn smoothed_abs(x: f32) -> f32 {
    return sqrt(x * x + SMOOTH_EPS);
}

fn smoothed_lerp_weight(x: f32, xs: f32) -> f32 {
    let dx = x - xs;
    if (abs(dx) > 1.0) {
        return 0.0;
    }
    return max(1.0 - smoothed_abs(dx), 0.0);
}

fn smoothed_lerp_weight_grad(x: f32, xs: f32) -> f32 {
    let dx = x - xs;
    if (abs(dx) > 1.0) {
        return 0.0;
    }
    return dx / smoothed_abs(dx);
}

fn clamp_index(i: i32, n: i32) -> i32 {
    return clamp(i, 0, n - 1);
}

fn mirror_index(i: i32, n: i32) -> i32 {
    let period = 2 * n;
    var m = i % period;
    if (m < 0) {
        m = m + period;
    }
    if (m >= n) {
        m = period - 1 - m;
    }
    return m;
}
`

// sampleWGSL gathers the clamped 2x2x2 neighborhood. It needs the grid and
// params bindings of the including shader.
const sampleWGSL = `
fn grid_at(c: i32, z: i32, x: i32, y: i32, b: i32) -> f32 {
    let C = i32(params.channels);
    let D = i32(params.depth);
    let GW = i32(params.grid_width);
    let GH = i32(params.grid_height);
    return grid[c + C * (z + D * (x + GW * (y + GH * b)))];
}

fn interpolate(c: i32, b: i32, gxf: f32, gyf: f32, gzf: f32, deriv: bool) -> f32 {
    let gx0 = i32(floor(gxf - 0.5));
    let gy0 = i32(floor(gyf - 0.5));
    let gz0 = i32(floor(gzf - 0.5));
    let D = i32(params.depth);

    var value = 0.0;
    for (var gy = gy0; gy < gy0 + 2; gy = gy + 1) {
        let gyc = clamp_index(gy, i32(params.grid_height));
        let wy = lerp_weight(f32(gy) + 0.5, gyf);
        for (var gx = gx0; gx < gx0 + 2; gx = gx + 1) {
            let gxc = clamp_index(gx, i32(params.grid_width));
            let wx = lerp_weight(f32(gx) + 0.5, gxf);
            for (var gz = gz0; gz < gz0 + 2; gz = gz + 1) {
                let gzc = clamp_index(gz, D);
                var wz: f32;
                if (deriv) {
                    wz = f32(D) * smoothed_lerp_weight_grad(f32(gz) + 0.5, gzf);
                } else {
                    wz = smoothed_lerp_weight(f32(gz) + 0.5, gzf);
                }
                value = value + wx * wy * wz * grid_at(c, gzc, gxc, gyc, b);
            }
        }
    }
    return value;
}
`

// sliceShader computes out(c, x, y, b); one invocation per output element.
const sliceShader = paramsWGSL + weightsWGSL + sampleWGSL + `
@group(0) @binding(0) var<storage, read> grid: array<f32>;
@group(0) @binding(1) var<storage, read> guide: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>, @builtin(num_workgroups) nwg: vec3<u32>) {
    let idx = unit_index(gid, nwg);
    if (idx >= params.units) {
        return;
    }

    let C = params.channels;
    let W = params.guide_width;
    let H = params.guide_height;
    let c = idx % C;
    let x = (idx / C) % W;
    let y = (idx / (C * W)) % H;
    let b = idx / (C * W * H);

    let scale_x = f32(params.grid_width) / f32(W);
    let scale_y = f32(params.grid_height) / f32(H);
    let gxf = (f32(x) + 0.5) * scale_x;
    let gyf = (f32(y) + 0.5) * scale_y;
    let gzf = guide[x + W * (y + H * b)] * f32(params.depth);

    result[idx] = interpolate(i32(c), i32(b), gxf, gyf, gzf, false);
}
`

// gridGradShader computes the grid gradient; one invocation per grid cell.
const gridGradShader = paramsWGSL + weightsWGSL + `
@group(0) @binding(0) var<storage, read> guide: array<f32>;
@group(0) @binding(1) var<storage, read> tangent: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>, @builtin(num_workgroups) nwg: vec3<u32>) {
    let idx = unit_index(gid, nwg);
    if (idx >= params.units) {
        return;
    }

    let C = i32(params.channels);
    let D = i32(params.depth);
    let GW = i32(params.grid_width);
    let GH = i32(params.grid_height);
    let W = i32(params.guide_width);
    let H = i32(params.guide_height);

    let i = i32(idx);
    let gc = i % C;
    let gz = (i / C) % D;
    let gx = (i / (C * D)) % GW;
    let gy = (i / (C * D * GW)) % GH;
    let b = i / (C * D * GW * GH);

    let scale_x = f32(W) / f32(GW);
    let scale_y = f32(H) / f32(GH);
    let depth = f32(D);

    let x0 = i32(floor(scale_x * (f32(gx) + 0.5 - 1.0)));
    let x1 = i32(ceil(scale_x * (f32(gx) + 0.5 + 1.0)));
    let y0 = i32(floor(scale_y * (f32(gy) + 0.5 - 1.0)));
    let y1 = i32(ceil(scale_y * (f32(gy) + 0.5 + 1.0)));

    var vjp = 0.0;
    for (var y = y0; y < y1; y = y + 1) {
        let ym = mirror_index(y, H);
        let gyf = (f32(y) + 0.5) / scale_y;
        let wy = lerp_weight(f32(gy) + 0.5, gyf);
        for (var x = x0; x < x1; x = x + 1) {
            let xm = mirror_index(x, W);
            let gxf = (f32(x) + 0.5) / scale_x;
            let wx = lerp_weight(f32(gx) + 0.5, gxf);

            let gzf = guide[xm + W * (ym + H * b)] * depth;
            var wz = smoothed_lerp_weight(f32(gz) + 0.5, gzf);
            if ((gz == 0 && gzf < 0.5) || (gz == D - 1 && gzf > depth - 0.5)) {
                wz = 1.0;
            }
            vjp = vjp + wz * wx * wy * tangent[gc + C * (xm + W * (ym + H * b))];
        }
    }
    result[idx] = vjp;
}
`

// guideGradShader computes the guide gradient; one invocation per pixel.
const guideGradShader = paramsWGSL + weightsWGSL + sampleWGSL + `
@group(0) @binding(0) var<storage, read> grid: array<f32>;
@group(0) @binding(1) var<storage, read> guide: array<f32>;
@group(0) @binding(2) var<storage, read> tangent: array<f32>;
@group(0) @binding(3) var<storage, read_write> result: array<f32>;
@group(0) @binding(4) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>, @builtin(num_workgroups) nwg: vec3<u32>) {
    let idx = unit_index(gid, nwg);
    if (idx >= params.units) {
        return;
    }

    let C = params.channels;
    let W = params.guide_width;
    let H = params.guide_height;
    let x = idx % W;
    let y = (idx / W) % H;
    let b = idx / (W * H);

    let scale_x = f32(params.grid_width) / f32(W);
    let scale_y = f32(params.grid_height) / f32(H);
    let gxf = (f32(x) + 0.5) * scale_x;
    let gyf = (f32(y) + 0.5) * scale_y;
    let gzf = guide[idx] * f32(params.depth);

    var vjp = 0.0;
    for (var c = 0u; c < C; c = c + 1u) {
        let grid_sample = interpolate(i32(c), i32(b), gxf, gyf, gzf, true);
        vjp = vjp + grid_sample * tangent[c + C * (x + W * (y + H * b))];
    }
    result[idx] = vjp;
}
`
